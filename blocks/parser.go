package blocks

import (
	"strings"

	"github.com/dhamidi/blockfile/stream"
	"github.com/dhamidi/blockfile/tag"
)

type state uint8

const (
	stateAwaitingPackageMeta state = iota
	stateAwaitingBlock
	stateInHeader
	stateInContent
	stateDone
)

// Parser is the block-document state machine. It consumes the stream
// one complete line at a time and suspends, preserving all state, when
// the stream has no complete line buffered; feeding the stream and
// stepping again resumes exactly where it left off.
//
// A Parser is owned by a single parse; the generator and the command
// cache behind it may be shared.
type Parser[B any, P Package[B]] struct {
	rules Rules
	gen   Generator[B, P]
	st    *stream.Stream

	diags Diagnostics
	util  Util

	state     state
	pkg       P
	blk       B
	haveBlock bool

	blocksStarted bool
	blockDiags    int
}

// NewParser creates a parser over st and immediately creates the
// package via the generator. name is handed to CreatePackage, usually
// the source file name.
func NewParser[B any, P Package[B]](name string, st *stream.Stream, rules Rules, gen Generator[B, P]) *Parser[B, P] {
	if rules.LineDelimiter == 0 {
		rules.LineDelimiter = '\n'
	}
	p := &Parser[B, P]{
		rules: rules,
		gen:   gen,
		st:    st,
		state: stateAwaitingPackageMeta,
	}
	p.util = Util{st: st, diags: &p.diags}
	p.pkg = gen.CreatePackage(name)
	gen.OnStart(&p.util, p.pkg)
	return p
}

// Step processes at most one line and returns whether parsing is still
// in progress. It returns stream.ErrNeedData when the source has no
// complete line buffered yet; the caller feeds the stream and calls
// Step again. Step is the cooperative suspension point: a host loop
// may interleave other work between calls.
func (p *Parser[B, P]) Step() (bool, error) {
	if p.state == stateDone {
		return false, nil
	}
	line, err := p.st.NextLine(p.rules.LineDelimiter)
	switch err {
	case nil:
	case stream.ErrNeedData:
		return true, err
	case stream.ErrEndOfStream:
		p.finish()
		return false, nil
	default:
		p.diags.add(p.st.Position(), "read: %s", err.Error())
		p.finish()
		return false, nil
	}
	p.handleLine(string(line))
	return true, nil
}

// Done reports whether the parse has completed.
func (p *Parser[B, P]) Done() bool { return p.state == stateDone }

// Result returns the package and the aggregated diagnostics, nil when
// every line was handled. The package is complete once Done reports
// true; before that it reflects a partial, best-effort state.
func (p *Parser[B, P]) Result() (P, error) {
	if p.diags.Empty() {
		return p.pkg, nil
	}
	return p.pkg, &p.diags
}

// Parse drives a parser over st to completion. The stream must be able
// to finish without external feeding (in-memory or reader-backed); for
// live sources, use NewParser and Step.
func Parse[B any, P Package[B]](name string, st *stream.Stream, rules Rules, gen Generator[B, P]) (P, error) {
	p := NewParser(name, st, rules, gen)
	for {
		more, err := p.Step()
		if err != nil {
			pkg, _ := p.Result()
			return pkg, err
		}
		if !more {
			return p.Result()
		}
	}
}

// handleLine classifies one line by its leading marker, in priority
// order: comment, block end, block id, header end, package meta, block
// meta, content.
func (p *Parser[B, P]) handleLine(raw string) {
	r := &p.rules
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}

	switch {
	case r.CommentPrefix != "" && strings.HasPrefix(line, r.CommentPrefix):
		comment := strings.TrimSpace(line[len(r.CommentPrefix):])
		p.gen.TryAddComment(&p.util, p.pkg, comment)

	case r.BlockEnd != "" && strings.HasPrefix(line, r.BlockEnd):
		trailing := tag.Parse(line[len(r.BlockEnd):], r.Tags)
		if !p.haveBlock {
			p.util.Errorf("unexpected block end")
			return
		}
		p.completeBlock(trailing)

	case r.BlockIDPrefix != "" && strings.HasPrefix(line, r.BlockIDPrefix):
		p.startBlock(tag.Parse(line[len(r.BlockIDPrefix):], r.Tags))

	case p.state == stateInHeader && r.HeaderEnd != "" && strings.HasPrefix(line, r.HeaderEnd):
		trailing := tag.Parse(line[len(r.HeaderEnd):], r.Tags)
		p.gen.CompleteHeader(&p.util, p.pkg, p.blk, trailing)
		p.state = stateInContent

	case r.PackageMetaPrefix != "" && strings.HasPrefix(line, r.PackageMetaPrefix):
		meta := tag.Parse(line[len(r.PackageMetaPrefix):], r.Tags)
		if p.haveBlock && !r.AllowPackageMetaInBlock {
			p.util.Errorf("package metadata %q not allowed inside a block", meta.ID)
			return
		}
		if !p.gen.TryEvaluatePackage(&p.util, p.pkg, p.blk, meta) {
			p.util.Errorf("unhandled package metadata %q", meta.ID)
		}

	case p.haveBlock && r.MetaPrefix != "" && strings.HasPrefix(line, r.MetaPrefix):
		// Note: this classification also claims meta-prefixed lines
		// inside block content. A literal line starting with the meta
		// prefix must be escaped with ContentEscape.
		meta := tag.Parse(line[len(r.MetaPrefix):], r.Tags)
		if !p.gen.TryEvaluateMeta(&p.util, p.pkg, p.blk, meta) {
			p.util.Errorf("unhandled metadata %q", meta.ID)
		}

	default:
		p.contentLine(line)
	}
}

func (p *Parser[B, P]) startBlock(id tag.Data) {
	if p.haveBlock {
		if p.rules.RequireExplicitBlockEnd {
			p.util.Errorf("missing explicit block end before new block %q", id.ID)
		}
		p.completeBlock(tag.Data{})
	}
	if !p.blocksStarted {
		p.gen.OnBlocksStart(&p.util, p.pkg)
		p.blocksStarted = true
	}
	blk, ok := p.gen.TryCreateBlock(&p.util, p.pkg, id)
	if !ok {
		p.util.Errorf("cannot create block %q", id.ID)
		p.state = stateAwaitingBlock
		return
	}
	p.blk = blk
	p.haveBlock = true
	p.blockDiags = len(p.diags.List)
	p.state = stateInHeader
}

func (p *Parser[B, P]) contentLine(line string) {
	if !p.haveBlock {
		p.util.Errorf("content outside of a block: %q", line)
		return
	}
	if p.state == stateInHeader {
		if p.rules.RequireExplicitHeaderEnd {
			p.util.Errorf("content before explicit header end: %q", line)
			return
		}
		// Implicit promotion from header to content.
		p.gen.CompleteHeader(&p.util, p.pkg, p.blk, tag.Data{})
		p.state = stateInContent
	}
	if p.rules.ContentEscape != "" {
		line = strings.TrimPrefix(line, p.rules.ContentEscape)
	}
	if !p.gen.TryAddContent(&p.util, p.pkg, p.blk, line) {
		p.util.Errorf("unhandled content line: %q", line)
	}
}

func (p *Parser[B, P]) completeBlock(trailing tag.Data) {
	if p.state == stateInHeader {
		p.gen.CompleteHeader(&p.util, p.pkg, p.blk, tag.Data{})
	}
	hadError := len(p.diags.List) > p.blockDiags
	p.gen.CompleteBlock(&p.util, p.pkg, p.blk, trailing, hadError)
	var zero B
	p.blk = zero
	p.haveBlock = false
	p.state = stateAwaitingBlock
}

// finish runs at stream exhaustion: an open block is implicitly
// completed (an error when an explicit end is required, but the package
// is still finalized best-effort) and OnEnd fires with the aggregate
// error flag.
func (p *Parser[B, P]) finish() {
	if p.haveBlock {
		if p.rules.RequireExplicitBlockEnd {
			p.util.Errorf("stream ended with unterminated block")
		}
		p.completeBlock(tag.Data{})
	}
	p.gen.OnEnd(&p.util, p.pkg, !p.diags.Empty())
	p.state = stateDone
}
