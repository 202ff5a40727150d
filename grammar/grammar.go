// Package grammar loads delimiter rule sets from HCL files, so the CLI
// and the LSP server can parse documents written in a custom grammar
// without recompiling.
package grammar

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/dhamidi/blockfile/blocks"
)

// fileSchema mirrors the HCL surface. Every attribute is optional;
// unset attributes keep their defaults from blocks.DefaultRules.
type fileSchema struct {
	BlockPrefix       *string     `hcl:"block_prefix,optional"`
	MetaPrefix        *string     `hcl:"meta_prefix,optional"`
	HeaderEnd         *string     `hcl:"header_end,optional"`
	ContentEscape     *string     `hcl:"content_escape,optional"`
	BlockEnd          *string     `hcl:"block_end,optional"`
	PackageMetaPrefix *string     `hcl:"package_meta_prefix,optional"`
	CommentPrefix     *string     `hcl:"comment_prefix,optional"`
	ContentJoin       *string     `hcl:"content_join,optional"`
	RequireHeaderEnd  *bool       `hcl:"require_header_end,optional"`
	RequireBlockEnd   *bool       `hcl:"require_block_end,optional"`
	PackageMetaInside *bool       `hcl:"allow_package_meta_in_block,optional"`
	Tags              *tagsSchema `hcl:"tags,block"`
}

type tagsSchema struct {
	Open        *string `hcl:"open,optional"`
	Close       *string `hcl:"close,optional"`
	Separators  *string `hcl:"separators,optional"`
	RegionClose *string `hcl:"region_close,optional"`
}

// LoadFile reads an HCL rule file and overlays it on the default
// grammar.
func LoadFile(path string) (blocks.Rules, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return blocks.Rules{}, fmt.Errorf("grammar: parse %s: %w", path, diags)
	}
	return decode(file.Body)
}

// LoadBytes decodes an in-memory HCL rule set; filename is used in
// error messages only.
func LoadBytes(src []byte, filename string) (blocks.Rules, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return blocks.Rules{}, fmt.Errorf("grammar: parse %s: %w", filename, diags)
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (blocks.Rules, error) {
	var schema fileSchema
	if diags := gohcl.DecodeBody(body, nil, &schema); diags.HasErrors() {
		return blocks.Rules{}, fmt.Errorf("grammar: decode: %w", diags)
	}

	rules := blocks.DefaultRules()
	setString(&rules.BlockIDPrefix, schema.BlockPrefix)
	setString(&rules.MetaPrefix, schema.MetaPrefix)
	setString(&rules.HeaderEnd, schema.HeaderEnd)
	setString(&rules.ContentEscape, schema.ContentEscape)
	setString(&rules.BlockEnd, schema.BlockEnd)
	setString(&rules.PackageMetaPrefix, schema.PackageMetaPrefix)
	setString(&rules.CommentPrefix, schema.CommentPrefix)
	setString(&rules.ContentJoin, schema.ContentJoin)
	setBool(&rules.RequireExplicitHeaderEnd, schema.RequireHeaderEnd)
	setBool(&rules.RequireExplicitBlockEnd, schema.RequireBlockEnd)
	setBool(&rules.AllowPackageMetaInBlock, schema.PackageMetaInside)
	if schema.Tags != nil {
		setString(&rules.Tags.TagOpen, schema.Tags.Open)
		setString(&rules.Tags.TagClose, schema.Tags.Close)
		setString(&rules.Tags.Separators, schema.Tags.Separators)
		setString(&rules.Tags.RegionClose, schema.Tags.RegionClose)
	}
	return rules, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
