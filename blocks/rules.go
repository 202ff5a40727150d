// Package blocks implements the line-oriented block-document parser: a
// resumable state machine that classifies input lines against a
// delimiter rule set and drives a caller-supplied block generator.
package blocks

import "github.com/dhamidi/blockfile/tag"

// Rules describes the document grammar. A Rules value is copied into
// the parser at construction and never consulted elsewhere afterwards,
// so mutating the original mid-parse has no effect.
type Rules struct {
	// Tags configures tag parsing for meta and id lines.
	Tags tag.Delimiters

	// BlockIDPrefix starts a new block. Default "::".
	BlockIDPrefix string

	// MetaPrefix marks a block metadata line. Default "@".
	MetaPrefix string

	// HeaderEnd ends a block header. Default "---".
	HeaderEnd string

	// ContentEscape prefixes a content line whose first character
	// would otherwise be classified as a marker. Default `\`.
	ContentEscape string

	// BlockEnd explicitly ends a block. Default "===".
	BlockEnd string

	// PackageMetaPrefix marks a package metadata line. Default "#".
	PackageMetaPrefix string

	// CommentPrefix marks a comment line. Default "//".
	CommentPrefix string

	// LineDelimiter separates lines. Default '\n'.
	LineDelimiter byte

	// ContentJoin joins batched content lines. Default "\n".
	ContentJoin string

	// RequireExplicitHeaderEnd rejects the implicit promotion of a
	// header line to content when no HeaderEnd line was seen.
	RequireExplicitHeaderEnd bool

	// RequireExplicitBlockEnd treats a new block id or stream end
	// while a block is open as a structural error instead of an
	// implicit block end.
	RequireExplicitBlockEnd bool

	// AllowPackageMetaInBlock lets package metadata lines appear
	// inside an open block.
	AllowPackageMetaInBlock bool
}

// DefaultRules returns the default grammar literals.
func DefaultRules() Rules {
	return Rules{
		Tags:              tag.DefaultDelimiters(),
		BlockIDPrefix:     "::",
		MetaPrefix:        "@",
		HeaderEnd:         "---",
		ContentEscape:     `\`,
		BlockEnd:          "===",
		PackageMetaPrefix: "#",
		CommentPrefix:     "//",
		LineDelimiter:     '\n',
		ContentJoin:       "\n",
	}
}
