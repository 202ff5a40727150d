package blocks

import (
	"strings"

	"github.com/dhamidi/blockfile/stream"
	"github.com/dhamidi/blockfile/tag"
)

// Record is a schema-less block: identifier, raw metadata, and joined
// content. It is the block type used by the CLI and the LSP server,
// where no caller-defined schema exists.
type Record struct {
	ID      string
	Meta    map[string]string
	Content string

	lines []string
}

// Document is the schema-less package of Records.
type Document struct {
	Name     string
	Meta     map[string]string
	Records  []*Record
	Comments []string
}

func (d *Document) Count() int { return len(d.Records) }

func (d *Document) Blocks() []*Record { return d.Records }

// Record returns the first record with the given id, or nil.
func (d *Document) Record(id string) *Record {
	for _, r := range d.Records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// DocumentGenerator builds Documents from arbitrary block files. Every
// metadata tag is accepted and stored raw; content accumulates in batch
// mode and is joined at block completion.
type DocumentGenerator struct {
	Base[*Record, *Document]
	join string
}

// NewDocumentGenerator creates a generator joining content lines with
// the rule set's ContentJoin separator.
func NewDocumentGenerator(rules Rules) *DocumentGenerator {
	return &DocumentGenerator{join: rules.ContentJoin}
}

func (g *DocumentGenerator) CreatePackage(name string) *Document {
	return &Document{Name: name, Meta: make(map[string]string)}
}

func (g *DocumentGenerator) TryCreateBlock(u *Util, d *Document, id tag.Data) (*Record, bool) {
	if id.ID == "" {
		return nil, false
	}
	r := &Record{ID: id.ID, Meta: make(map[string]string)}
	d.Records = append(d.Records, r)
	return r, true
}

func (g *DocumentGenerator) TryEvaluateMeta(u *Util, d *Document, r *Record, meta tag.Data) bool {
	if meta.ID == "" {
		return false
	}
	r.Meta[meta.ID] = meta.Body
	return true
}

func (g *DocumentGenerator) TryEvaluatePackage(u *Util, d *Document, r *Record, meta tag.Data) bool {
	if meta.ID == "" {
		return false
	}
	d.Meta[meta.ID] = meta.Body
	return true
}

func (g *DocumentGenerator) TryAddContent(u *Util, d *Document, r *Record, line string) bool {
	r.lines = append(r.lines, line)
	return true
}

func (g *DocumentGenerator) TryAddComment(u *Util, d *Document, comment string) bool {
	d.Comments = append(d.Comments, comment)
	return true
}

func (g *DocumentGenerator) CompleteBlock(u *Util, d *Document, r *Record, trailing tag.Data, hadError bool) {
	r.Content = strings.Join(r.lines, g.join)
	r.lines = nil
}

// ParseDocument parses a schema-less document from text under the
// given rules.
func ParseDocument(name, text string, rules Rules) (*Document, error) {
	st := stream.NewString(text, name)
	return Parse[*Record, *Document](name, st, rules, NewDocumentGenerator(rules))
}
