package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dhamidi/blockfile/blocks"
)

func TestJSONEncoder(t *testing.T) {
	doc, err := blocks.ParseDocument("t", "#title=X\n::a\n@m=1\n---\nbody\n===\n", blocks.DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded struct {
		Name   string            `json:"name"`
		Meta   map[string]string `json:"meta"`
		Blocks []struct {
			ID      string            `json:"id"`
			Meta    map[string]string `json:"meta"`
			Content string            `json:"content"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Meta["title"] != "X" {
		t.Errorf("meta = %v", decoded.Meta)
	}
	if len(decoded.Blocks) != 1 || decoded.Blocks[0].ID != "a" ||
		decoded.Blocks[0].Meta["m"] != "1" || decoded.Blocks[0].Content != "body" {
		t.Errorf("blocks = %+v", decoded.Blocks)
	}
}
