package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/blockfile/blocks"
	"github.com/dhamidi/blockfile/convert"
	"github.com/dhamidi/blockfile/dispatch"
)

// JSONEncoder writes a parsed document as indented JSON.
type JSONEncoder struct {
	w   io.Writer
	doc *blocks.Document
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(doc *blocks.Document) error {
	e.doc = doc
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(documentToJSON(e.doc), "", "  ")
}

type jsonDocument struct {
	Name     string            `json:"name,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
	Blocks   []jsonBlock       `json:"blocks"`
	Comments []string          `json:"comments,omitempty"`
}

type jsonBlock struct {
	ID      string            `json:"id"`
	Meta    map[string]string `json:"meta,omitempty"`
	Content string            `json:"content,omitempty"`
}

func documentToJSON(doc *blocks.Document) jsonDocument {
	jd := jsonDocument{
		Name:     doc.Name,
		Meta:     doc.Meta,
		Blocks:   make([]jsonBlock, 0, doc.Count()),
		Comments: doc.Comments,
	}
	if len(jd.Meta) == 0 {
		jd.Meta = nil
	}
	for _, r := range doc.Records {
		jb := jsonBlock{ID: r.ID, Meta: r.Meta, Content: r.Content}
		if len(jb.Meta) == 0 {
			jb.Meta = nil
		}
		jd.Blocks = append(jd.Blocks, jb)
	}
	return jd
}

// EventJSONEncoder writes the events of an inline parse as indented
// JSON.
type EventJSONEncoder struct {
	w io.Writer
}

func NewEventJSONEncoder(w io.Writer) *EventJSONEncoder {
	return &EventJSONEncoder{w: w}
}

type jsonEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Tag     string `json:"tag,omitempty"`
}

func (e *EventJSONEncoder) Encode(events []dispatch.Event) error {
	out := make([]jsonEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, jsonEvent{
			Type:    ev.Type,
			Payload: payloadValue(ev),
			Tag:     ev.Tag.ID,
		})
	}
	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func payloadValue(ev dispatch.Event) any {
	switch v := ev.Value; v.Kind {
	case convert.String:
		return v.Str
	case convert.Int:
		return v.Int
	case convert.Float:
		return v.Float
	case convert.Bool:
		return v.Bool
	}
	return nil
}
