package blocks

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dhamidi/blockfile/stream"
	"github.com/dhamidi/blockfile/tag"
)

func parseDoc(t *testing.T, text string, rules Rules) (*Document, error) {
	t.Helper()
	return ParseDocument("test.blk", text, rules)
}

func TestRoundTrip(t *testing.T) {
	doc, err := parseDoc(t, "::block1\n@meta=5\n---\nhello\nworld\n===\n", DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", doc.Count())
	}
	r := doc.Records[0]
	if r.ID != "block1" {
		t.Errorf("ID = %q, want %q", r.ID, "block1")
	}
	if r.Meta["meta"] != "5" {
		t.Errorf("Meta[meta] = %q, want %q", r.Meta["meta"], "5")
	}
	if r.Content != "hello\nworld" {
		t.Errorf("Content = %q, want %q", r.Content, "hello\nworld")
	}
}

func TestImplicitBlockClose(t *testing.T) {
	doc, err := parseDoc(t, "::a\nfirst\n::b\nsecond\n", DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", doc.Count())
	}
	if doc.Records[0].Content != "first" || doc.Records[1].Content != "second" {
		t.Errorf("contents = %q, %q", doc.Records[0].Content, doc.Records[1].Content)
	}
}

func TestImplicitBlockCloseAtStreamEnd(t *testing.T) {
	doc, err := parseDoc(t, "::a\ncontent", DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Count() != 1 || doc.Records[0].Content != "content" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestExplicitBlockEndRequired(t *testing.T) {
	rules := DefaultRules()
	rules.RequireExplicitBlockEnd = true

	doc, err := parseDoc(t, "::a\nx\n", rules)
	if err == nil {
		t.Fatal("parse succeeded, want unterminated-block error")
	}
	// Best-effort: the block is still finalized.
	if doc.Count() != 1 || doc.Records[0].Content != "x" {
		t.Errorf("doc = %+v", doc)
	}

	var diags *Diagnostics
	if !errors.As(err, &diags) {
		t.Fatalf("err = %T, want *Diagnostics", err)
	}
	if len(diags.List) != 1 {
		t.Errorf("diagnostics = %v", diags.List)
	}
}

func TestPackageMetaAndComments(t *testing.T) {
	input := "// top comment\n#title=My Package\n::a\n---\nbody\n===\n"
	doc, err := parseDoc(t, input, DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Meta["title"] != "My Package" {
		t.Errorf("Meta[title] = %q", doc.Meta["title"])
	}
	if len(doc.Comments) != 1 || doc.Comments[0] != "top comment" {
		t.Errorf("Comments = %v", doc.Comments)
	}
}

func TestPackageMetaInsideBlock(t *testing.T) {
	input := "::a\n#pkg=1\n===\n"

	if _, err := parseDoc(t, input, DefaultRules()); err == nil {
		t.Error("package meta inside block should fail by default")
	}

	rules := DefaultRules()
	rules.AllowPackageMetaInBlock = true
	doc, err := parseDoc(t, input, rules)
	if err != nil {
		t.Fatalf("parse with AllowPackageMetaInBlock: %v", err)
	}
	if doc.Meta["pkg"] != "1" {
		t.Errorf("Meta[pkg] = %q, want %q", doc.Meta["pkg"], "1")
	}
}

func TestMetaPrefixInContentIsNotContent(t *testing.T) {
	// Documented behavior of implicit header promotion: an unescaped
	// meta-prefixed line never reaches block content, even after
	// content has started.
	doc, err := parseDoc(t, "::a\nbody one\n@meta=5\nbody two\n", DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := doc.Records[0]
	if r.Content != "body one\nbody two" {
		t.Errorf("Content = %q, want meta line excluded", r.Content)
	}
	if r.Meta["meta"] != "5" {
		t.Errorf("Meta[meta] = %q, want %q", r.Meta["meta"], "5")
	}
}

func TestEscapedContentLine(t *testing.T) {
	doc, err := parseDoc(t, "::a\n---\n\\@literal=yes\n===\n", DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := doc.Records[0]
	if r.Content != "@literal=yes" {
		t.Errorf("Content = %q, want %q", r.Content, "@literal=yes")
	}
	if _, ok := r.Meta["literal"]; ok {
		t.Error("escaped line was evaluated as metadata")
	}
}

func TestExplicitHeaderEndRequired(t *testing.T) {
	rules := DefaultRules()
	rules.RequireExplicitHeaderEnd = true

	doc, err := parseDoc(t, "::a\nstray\n---\nbody\n===\n", rules)
	if err == nil {
		t.Fatal("parse succeeded, want content-before-header-end error")
	}
	if doc.Records[0].Content != "body" {
		t.Errorf("Content = %q, want %q", doc.Records[0].Content, "body")
	}
}

func TestContentOutsideBlock(t *testing.T) {
	_, err := parseDoc(t, "floating line\n::a\n===\n", DefaultRules())
	if err == nil {
		t.Fatal("parse succeeded, want content-outside-block error")
	}
}

func TestUnexpectedBlockEnd(t *testing.T) {
	_, err := parseDoc(t, "===\n", DefaultRules())
	if err == nil {
		t.Fatal("parse succeeded, want unexpected-block-end error")
	}
}

func TestErrorsAreBestEffort(t *testing.T) {
	// The bad line is recorded, later blocks still parse.
	input := "stray\n::a\n---\nok\n===\n::b\n---\nalso ok\n===\n"
	doc, err := parseDoc(t, input, DefaultRules())
	if err == nil {
		t.Fatal("parse succeeded, want recorded diagnostic")
	}
	if doc.Count() != 2 {
		t.Errorf("Count() = %d, want 2", doc.Count())
	}
}

func TestBlockErrorFlagIsPerBlock(t *testing.T) {
	type completion struct {
		id       string
		hadError bool
	}
	var completions []completion

	gen := &recordingGenerator{
		onComplete: func(r *Record, hadError bool) {
			completions = append(completions, completion{r.ID, hadError})
		},
	}
	input := "::a\n@bad\n===\n::b\n===\n"
	st := stream.NewString(input, "t")
	Parse[*Record, *Document]("t", st, DefaultRules(), gen)

	want := []completion{{"a", true}, {"b", false}}
	if diff := cmp.Diff(want, completions, cmp.AllowUnexported(completion{})); diff != "" {
		t.Errorf("completions mismatch (-want +got):\n%s", diff)
	}
}

// recordingGenerator rejects empty meta tags and reports block
// completions, for error-flag tests.
type recordingGenerator struct {
	DocumentGenerator
	onComplete func(*Record, bool)
}

func (g *recordingGenerator) TryEvaluateMeta(u *Util, d *Document, r *Record, meta tag.Data) bool {
	if meta.Body == "" {
		return false
	}
	return g.DocumentGenerator.TryEvaluateMeta(u, d, r, meta)
}

func (g *recordingGenerator) CompleteBlock(u *Util, d *Document, r *Record, trailing tag.Data, hadError bool) {
	g.DocumentGenerator.CompleteBlock(u, d, r, trailing, hadError)
	g.onComplete(r, hadError)
}

func TestChunkedStreamingMatchesWholeDocument(t *testing.T) {
	input := "#title=X\n::block1\n@meta=5\n---\nhello\nworld\n===\n::block2\n---\nbye\n===\n"
	rules := DefaultRules()

	whole, err := parseDoc(t, input, rules)
	if err != nil {
		t.Fatalf("whole parse: %v", err)
	}

	for split := 0; split <= len(input); split++ {
		t.Run(fmt.Sprintf("split=%d", split), func(t *testing.T) {
			st := stream.NewLive("test.blk")
			p := NewParser[*Record, *Document]("test.blk", st, rules, NewDocumentGenerator(rules))

			feed := func(chunk string) {
				if err := st.FeedString(chunk); err != nil {
					t.Fatalf("feed: %v", err)
				}
				for {
					more, err := p.Step()
					if err == stream.ErrNeedData {
						return
					}
					if err != nil {
						t.Fatalf("Step: %v", err)
					}
					if !more {
						return
					}
				}
			}
			feed(input[:split])
			feed(input[split:])
			st.End()
			for !p.Done() {
				if _, err := p.Step(); err != nil {
					t.Fatalf("final Step: %v", err)
				}
			}

			chunked, err := p.Result()
			if err != nil {
				t.Fatalf("chunked parse: %v", err)
			}
			if diff := cmp.Diff(whole, chunked, cmpopts.IgnoreUnexported(Record{})); diff != "" {
				t.Errorf("package mismatch (-whole +chunked):\n%s", diff)
			}
		})
	}
}

func TestInsertDuringParse(t *testing.T) {
	// An include directive splices a sub-document at the cursor; its
	// lines are parsed before the rest of the outer document.
	gen := &includeGenerator{includes: map[string]string{
		"extra": "@from=include\n",
	}}
	input := "::a\n@include=extra\n---\nbody\n===\n"
	st := stream.NewString(input, "outer")
	doc, err := Parse[*Record, *Document]("outer", st, DefaultRules(), gen)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := doc.Records[0]
	if r.Meta["from"] != "include" {
		t.Errorf("Meta[from] = %q, want %q", r.Meta["from"], "include")
	}
	if r.Content != "body" {
		t.Errorf("Content = %q, want %q", r.Content, "body")
	}
}

type includeGenerator struct {
	DocumentGenerator
	includes map[string]string
}

func (g *includeGenerator) TryEvaluateMeta(u *Util, d *Document, r *Record, meta tag.Data) bool {
	if meta.ID == "include" {
		text, ok := g.includes[meta.Body]
		if !ok {
			return false
		}
		u.InsertString(text)
		return true
	}
	return g.DocumentGenerator.TryEvaluateMeta(u, d, r, meta)
}

func TestCustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.BlockIDPrefix = ">>"
	rules.BlockEnd = "<<"
	rules.ContentJoin = " "

	doc, err := parseDoc(t, ">>x\n---\naa\nbb\n<<\n", rules)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Records[0].ID != "x" || doc.Records[0].Content != "aa bb" {
		t.Errorf("doc = %+v", doc.Records[0])
	}
}

func TestCRLFInput(t *testing.T) {
	doc, err := parseDoc(t, "::a\r\n@m=1\r\n---\r\nline\r\n===\r\n", DefaultRules())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := doc.Records[0]
	if r.Meta["m"] != "1" || r.Content != "line" {
		t.Errorf("record = %+v", r)
	}
}
