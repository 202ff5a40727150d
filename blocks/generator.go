package blocks

import (
	"io"

	"github.com/dhamidi/blockfile/stream"
	"github.com/dhamidi/blockfile/tag"
)

// Package is the minimal contract the parser requires of the collection
// it populates: a countable, enumerable set of blocks.
type Package[B any] interface {
	Count() int
	Blocks() []B
}

// Generator builds caller-defined blocks and packages as the parser
// walks the document. Try methods report whether the input was handled;
// an unhandled line is recorded as a diagnostic and parsing continues.
type Generator[B any, P Package[B]] interface {
	// CreatePackage is called once, before any line is read.
	CreatePackage(name string) P

	// OnStart runs after package creation, OnBlocksStart immediately
	// before the first block is created.
	OnStart(u *Util, pkg P)
	OnBlocksStart(u *Util, pkg P)

	// TryCreateBlock creates the block identified by the id tag.
	TryCreateBlock(u *Util, pkg P, id tag.Data) (B, bool)

	// TryEvaluateMeta applies one block metadata tag.
	TryEvaluateMeta(u *Util, pkg P, blk B, meta tag.Data) bool

	// TryEvaluatePackage applies one package metadata tag. blk is the
	// zero value when no block is open.
	TryEvaluatePackage(u *Util, pkg P, blk B, meta tag.Data) bool

	// CompleteHeader runs when the block transitions from header to
	// content, explicitly or implicitly.
	CompleteHeader(u *Util, pkg P, blk B, trailing tag.Data)

	// TryAddContent applies one content line.
	TryAddContent(u *Util, pkg P, blk B, line string) bool

	// TryAddComment sees every comment line.
	TryAddComment(u *Util, pkg P, comment string) bool

	// CompleteBlock finalizes a block; hadError reports whether any
	// line of this block failed.
	CompleteBlock(u *Util, pkg P, blk B, trailing tag.Data, hadError bool)

	// OnEnd runs exactly once, when the stream is exhausted; hadError
	// aggregates all failures of the parse.
	OnEnd(u *Util, pkg P, hadError bool)
}

// Base provides no-op implementations of the optional Generator hooks.
// Embed it to implement only the hooks a document schema needs.
type Base[B any, P Package[B]] struct{}

func (Base[B, P]) OnStart(*Util, P)       {}
func (Base[B, P]) OnBlocksStart(*Util, P) {}

func (Base[B, P]) TryEvaluatePackage(*Util, P, B, tag.Data) bool { return false }

func (Base[B, P]) CompleteHeader(*Util, P, B, tag.Data) {}

func (Base[B, P]) TryAddComment(*Util, P, string) bool { return true }

func (Base[B, P]) OnEnd(*Util, P, bool) {}

// Util is handed to every generator hook: position information, the
// error channel, and content insertion for includes.
type Util struct {
	st    *stream.Stream
	diags *Diagnostics
}

// Position returns the position just past the line being processed.
func (u *Util) Position() stream.Position {
	return u.st.Position()
}

// Errorf records a diagnostic at the current position without aborting
// the parse.
func (u *Util) Errorf(format string, args ...any) {
	u.diags.add(u.st.Position(), format, args...)
}

// Insert splices content at the stream cursor, so it is parsed before
// the remainder of the document. Used to include sub-documents.
func (u *Util) Insert(data []byte) {
	u.st.Insert(data)
}

// InsertString splices text at the stream cursor.
func (u *Util) InsertString(text string) {
	u.st.InsertString(text)
}

// InsertReader splices the full content of r at the stream cursor.
func (u *Util) InsertReader(r io.Reader) error {
	return u.st.InsertReader(r)
}
