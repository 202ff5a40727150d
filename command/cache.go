package command

import (
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/blockfile/convert"
	"github.com/dhamidi/blockfile/tag"
)

var log = commonlog.GetLogger("blockfile.command")

// Cache builds and memoizes command tables per target type and invokes
// commands against block instances. One process-wide cache may serve
// multiple concurrent parses; the shared argument scratch buffer is
// guarded by a mutex.
type Cache struct {
	mu       sync.Mutex
	tables   map[string]*Table
	conv     convert.Service
	splitter byte
	scratch  []convert.Value
}

// Option configures a Cache.
type Option func(*Cache)

// WithConverter replaces the default conversion service.
func WithConverter(conv convert.Service) Option {
	return func(c *Cache) { c.conv = conv }
}

// WithSplitter sets the character separating positional arguments in a
// multi-parameter payload. The default is a space.
func WithSplitter(b byte) Option {
	return func(c *Cache) { c.splitter = b }
}

// NewCache creates an empty command cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		tables:   make(map[string]*Table),
		conv:     convert.Default,
		splitter: ' ',
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the command table for typeName, building it on first
// request by running the registration function. Building is idempotent:
// repeated requests for the same type return the cached table without
// re-running build.
func (c *Cache) Resolve(typeName string, build func(*Builder)) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tables[typeName]; ok {
		return t, nil
	}
	b := &Builder{
		table: &Table{typeName: typeName, metas: make(map[string]*Meta)},
		conv:  c.conv,
	}
	build(b)
	if b.err != nil {
		return nil, b.err
	}
	c.tables[typeName] = b.table
	return b.table, nil
}

// InvokeMeta dispatches one meta tag to the matching command on target.
// It reports false when the command is unknown, the argument count is
// out of range, a conversion fails, or the invocation itself fails;
// user panics are caught and logged, never propagated.
func (c *Cache) InvokeMeta(t *Table, target any, d tag.Data) bool {
	m := t.Meta(d.ID)
	if m == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	args, ok := c.buildArgs(m, d.Body)
	if !ok {
		return false
	}
	if m.static {
		target = nil
	}
	return c.safeInvoke(m, target, args)
}

// InvokeContent delivers one batch or line of content to the type's
// content command.
func (c *Cache) InvokeContent(t *Table, target any, text string) bool {
	content := t.Content()
	if content == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("type %s: content command panicked: %v", t.typeName, r)
		}
	}()
	if err := content.invoke(target, text); err != nil {
		log.Errorf("type %s: content command failed: %s", t.typeName, err.Error())
		return false
	}
	return true
}

// buildArgs splits and converts the raw payload into the shared scratch
// buffer. Single-parameter commands receive the whole payload unsplit.
func (c *Cache) buildArgs(m *Meta, payload string) ([]convert.Value, bool) {
	c.scratch = c.scratch[:0]

	var parts []string
	switch {
	case payload == "":
		// No arguments.
	case len(m.params) <= 1:
		parts = []string{payload}
	default:
		parts = strings.FieldsFunc(payload, func(r rune) bool { return byte(r) == c.splitter })
	}

	if len(parts) < m.required || len(parts) > len(m.params) {
		return nil, false
	}
	for i, raw := range parts {
		v, ok := c.conv.Convert(raw, m.params[i].Kind, nil)
		if !ok {
			return nil, false
		}
		c.scratch = append(c.scratch, v)
	}
	// Fill the remaining optional parameters from their declared
	// defaults.
	for i := len(parts); i < len(m.params); i++ {
		c.scratch = append(c.scratch, m.defaults[i-m.required])
	}
	return c.scratch, true
}

func (c *Cache) safeInvoke(m *Meta, target any, args []convert.Value) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("command %q panicked: %v", m.name, r)
			ok = false
		}
	}()
	if err := m.invoke(target, args); err != nil {
		log.Errorf("command %q failed: %s", m.name, err.Error())
		return false
	}
	return true
}
