// Package command implements the meta-command cache: per-type,
// precomputed dispatch tables mapping a block's declared metadata
// commands to setter and method invocations. Tables are registered
// explicitly through a builder instead of discovered by reflection, and
// built once per type.
package command

import (
	"fmt"
	"strings"

	"github.com/dhamidi/blockfile/convert"
)

// TargetKind describes what a command binding writes to.
type TargetKind uint8

const (
	Field TargetKind = iota
	Property
	Method
)

func (k TargetKind) String() string {
	switch k {
	case Field:
		return "field"
	case Property:
		return "property"
	case Method:
		return "method"
	}
	return "unknown"
}

// Mode selects how block content reaches the content command.
type Mode uint8

const (
	// Batch joins all content lines and delivers them once, at block
	// completion.
	Batch Mode = iota

	// LineByLine delivers each content line individually. Only valid
	// for method-backed content commands.
	LineByLine
)

// Param describes one command parameter. Optional parameters carry a
// raw default that is converted once, at table build time.
type Param struct {
	Kind     convert.Kind
	Optional bool
	Default  string
}

// Invoker applies converted arguments to a target. Returned errors and
// panics are both treated as invocation failure by the cache.
type Invoker func(target any, args []convert.Value) error

// ContentInvoker applies one content delivery to a target.
type ContentInvoker func(target any, text string) error

// Meta is a precomputed invocation descriptor for one meta command.
type Meta struct {
	name     string
	kind     TargetKind
	static   bool
	params   []Param
	required int
	defaults []convert.Value
	invoke   Invoker
}

// Content is the invocation descriptor for a type's content command.
type Content struct {
	kind   TargetKind
	mode   Mode
	invoke ContentInvoker
}

// Mode returns the content delivery mode.
func (c *Content) Mode() Mode { return c.mode }

// Table is the immutable command table for one target type.
type Table struct {
	typeName string
	metas    map[string]*Meta
	content  *Content
}

// TypeName returns the type the table was built for.
func (t *Table) TypeName() string { return t.typeName }

// Content returns the content-command descriptor, or nil when the type
// declares none.
func (t *Table) Content() *Content { return t.content }

// Meta returns the meta-command descriptor registered under name, or
// nil. Lookup is case-insensitive.
func (t *Table) Meta(name string) *Meta {
	return t.metas[strings.ToLower(name)]
}

// Builder registers the commands of one target type. All registration
// errors are collected and surfaced when the table is resolved, so a
// malformed registration fails fast rather than at parse time.
type Builder struct {
	table *Table
	conv  convert.Service
	err   error
}

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("command: type %s: %s", b.table.typeName, fmt.Sprintf(format, args...))
	}
}

func (b *Builder) addMeta(m *Meta) {
	key := strings.ToLower(m.name)
	if key == "" {
		b.fail("empty command name")
		return
	}
	if _, dup := b.table.metas[key]; dup {
		b.fail("duplicate command %q", m.name)
		return
	}
	optional := false
	for i, p := range m.params {
		if p.Optional {
			optional = true
			v, ok := b.conv.Convert(p.Default, p.Kind, nil)
			if !ok {
				b.fail("command %q: parameter %d default %q is not a valid %v", m.name, i, p.Default, p.Kind)
				return
			}
			m.defaults = append(m.defaults, v)
		} else {
			if optional {
				b.fail("command %q: required parameter %d after an optional one", m.name, i)
				return
			}
			m.required++
		}
	}
	b.table.metas[key] = m
}

// Field registers a single-value field setter.
func (b *Builder) Field(name string, kind convert.Kind, set Invoker) *Builder {
	b.addMeta(&Meta{
		name:   name,
		kind:   Field,
		params: []Param{{Kind: kind}},
		invoke: set,
	})
	return b
}

// Property registers a single-value property setter.
func (b *Builder) Property(name string, kind convert.Kind, set Invoker) *Builder {
	b.addMeta(&Meta{
		name:   name,
		kind:   Property,
		params: []Param{{Kind: kind}},
		invoke: set,
	})
	return b
}

// Method registers a method-backed command with positional parameters.
func (b *Builder) Method(name string, invoke Invoker, params ...Param) *Builder {
	b.addMeta(&Meta{name: name, kind: Method, params: params, invoke: invoke})
	return b
}

// StaticMethod registers a method-backed command that ignores the
// block instance.
func (b *Builder) StaticMethod(name string, invoke Invoker, params ...Param) *Builder {
	b.addMeta(&Meta{name: name, kind: Method, static: true, params: params, invoke: invoke})
	return b
}

// Content registers the type's single content command. LineByLine mode
// on a field or property target is a configuration mistake; it is
// downgraded to Batch with a logged warning.
func (b *Builder) Content(kind TargetKind, mode Mode, invoke ContentInvoker) *Builder {
	if b.table.content != nil {
		b.fail("multiple content commands")
		return b
	}
	if mode == LineByLine && kind != Method {
		log.Warningf("type %s: line-by-line content requires a method target, downgrading %v to batch",
			b.table.typeName, kind)
		mode = Batch
	}
	b.table.content = &Content{kind: kind, mode: mode, invoke: invoke}
	return b
}
