package blocks

import (
	"strings"

	"github.com/dhamidi/blockfile/command"
	"github.com/dhamidi/blockfile/tag"
)

// BoundGenerator wires a command cache into the generator protocol:
// block metadata dispatches to the block table's meta commands, package
// metadata to the package table, and content to the block table's
// content command in its declared mode.
type BoundGenerator[B any, P Package[B]] struct {
	Base[B, P]

	cache      *command.Cache
	blockTable *command.Table
	pkgTable   *command.Table
	create     func(name string) P
	newBlock   func(pkg P, id tag.Data) (B, bool)
	join       string

	batch []string
}

// NewBoundGenerator builds a generator around the given command tables.
// pkgTable may be nil when the document has no package metadata; join
// separates batched content lines.
func NewBoundGenerator[B any, P Package[B]](
	cache *command.Cache,
	blockTable, pkgTable *command.Table,
	create func(name string) P,
	newBlock func(pkg P, id tag.Data) (B, bool),
	join string,
) *BoundGenerator[B, P] {
	return &BoundGenerator[B, P]{
		cache:      cache,
		blockTable: blockTable,
		pkgTable:   pkgTable,
		create:     create,
		newBlock:   newBlock,
		join:       join,
	}
}

func (g *BoundGenerator[B, P]) CreatePackage(name string) P {
	return g.create(name)
}

func (g *BoundGenerator[B, P]) TryCreateBlock(u *Util, pkg P, id tag.Data) (B, bool) {
	g.batch = g.batch[:0]
	return g.newBlock(pkg, id)
}

func (g *BoundGenerator[B, P]) TryEvaluateMeta(u *Util, pkg P, blk B, meta tag.Data) bool {
	return g.cache.InvokeMeta(g.blockTable, blk, meta)
}

func (g *BoundGenerator[B, P]) TryEvaluatePackage(u *Util, pkg P, blk B, meta tag.Data) bool {
	if g.pkgTable == nil {
		return false
	}
	return g.cache.InvokeMeta(g.pkgTable, pkg, meta)
}

func (g *BoundGenerator[B, P]) TryAddContent(u *Util, pkg P, blk B, line string) bool {
	content := g.blockTable.Content()
	if content == nil {
		return false
	}
	if content.Mode() == command.LineByLine {
		return g.cache.InvokeContent(g.blockTable, blk, line)
	}
	g.batch = append(g.batch, line)
	return true
}

func (g *BoundGenerator[B, P]) CompleteBlock(u *Util, pkg P, blk B, trailing tag.Data, hadError bool) {
	content := g.blockTable.Content()
	if content == nil || content.Mode() == command.LineByLine || len(g.batch) == 0 {
		return
	}
	joined := strings.Join(g.batch, g.join)
	g.batch = g.batch[:0]
	if !g.cache.InvokeContent(g.blockTable, blk, joined) {
		u.Errorf("content command rejected batched content")
	}
}
