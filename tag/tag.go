// Package tag implements delimiter rules and the parsing of single tag
// occurrences of the form identifier[separator]payload, optionally
// wrapped in tag markers and region-close markers.
package tag

// Delimiters describes the markers recognized around and inside one
// tag. A zero marker disables the corresponding rule. Delimiters are
// copied by value into parsers and never mutated mid-parse.
type Delimiters struct {
	// TagOpen and TagClose wrap an inline tag occurrence.
	TagOpen  string
	TagClose string

	// Separators holds the characters that split the identifier from
	// the payload. The first occurrence of any of them wins.
	Separators string

	// RegionClose marks closing tags: leading for a tag that closes a
	// region, trailing for a self-closing tag.
	RegionClose string
}

// DefaultDelimiters returns the default inline-tag grammar: curly
// braces, ':'/'='/' ' separators, and '/' as the region-close marker.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		TagOpen:     "{",
		TagClose:    "}",
		Separators:  ":= ",
		RegionClose: "/",
	}
}

const (
	flagClosing uint8 = 1 << iota
	flagSelfClosed
)

// Data is the parsed representation of one tag occurrence. It is
// transient: constructed per occurrence and consumed immediately by a
// dispatch table.
type Data struct {
	// ID is the tag identifier. Empty only for a fully-empty or
	// malformed tag.
	ID string

	// Body is the raw, unconverted payload. It never includes the
	// separator that split it from ID.
	Body string

	flags uint8
}

// IsClosing reports whether the tag opens a closing region (leading
// region-close marker).
func (d Data) IsClosing() bool { return d.flags&flagClosing != 0 }

// IsSelfClosed reports whether the tag closes itself (trailing
// region-close marker).
func (d Data) IsSelfClosed() bool { return d.flags&flagSelfClosed != 0 }

// IsEmpty reports whether the tag carries no content at all.
func (d Data) IsEmpty() bool { return d.ID == "" && d.Body == "" && d.flags == 0 }

// Parse parses one tag occurrence from a string slice.
func Parse(src string, rules Delimiters) Data {
	return parse(src, rules)
}

// ParseBytes parses one tag occurrence from a byte slice. Results are
// byte-identical to Parse on the same content.
func ParseBytes(src []byte, rules Delimiters) Data {
	return parse(src, rules)
}

func parse[T ~string | ~[]byte](src T, rules Delimiters) Data {
	t := trim(src)

	stripped := false
	if hasPrefix(t, rules.TagOpen) {
		t = t[len(rules.TagOpen):]
		stripped = true
	}
	if hasSuffix(t, rules.TagClose) {
		t = t[:len(t)-len(rules.TagClose)]
		stripped = true
	}
	if stripped {
		t = trim(t)
	}

	var flags uint8
	if rules.RegionClose != "" {
		if hasPrefix(t, rules.RegionClose) {
			flags |= flagClosing
			t = t[len(rules.RegionClose):]
		}
		if hasSuffix(t, rules.RegionClose) {
			flags |= flagSelfClosed
			t = t[:len(t)-len(rules.RegionClose)]
		}
		if flags != 0 {
			t = trim(t)
		}
	}

	if len(t) == 0 {
		return Data{flags: flags}
	}

	sep := indexAny(t, rules.Separators)
	if sep < 0 {
		return Data{ID: string(t), flags: flags}
	}

	id := trim(t[:sep])
	rest := t[sep:]
	for len(rest) > 0 && isSeparator(rest[0], rules.Separators) {
		rest = rest[1:]
	}
	return Data{ID: string(id), Body: string(trim(rest)), flags: flags}
}

// isTrimmable matches the minimal whitespace set stripped around tag
// boundaries: space, tab, CR, LF, form feed, NUL.
func isTrimmable(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func trim[T ~string | ~[]byte](s T) T {
	start := 0
	for start < len(s) && isTrimmable(s[start]) {
		start++
	}
	end := len(s)
	for end > start && isTrimmable(s[end-1]) {
		end--
	}
	return s[start:end]
}

func hasPrefix[T ~string | ~[]byte](s T, prefix string) bool {
	if prefix == "" || len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

func hasSuffix[T ~string | ~[]byte](s T, suffix string) bool {
	if suffix == "" || len(s) < len(suffix) {
		return false
	}
	off := len(s) - len(suffix)
	for i := 0; i < len(suffix); i++ {
		if s[off+i] != suffix[i] {
			return false
		}
	}
	return true
}

func indexAny[T ~string | ~[]byte](s T, chars string) int {
	for i := 0; i < len(s); i++ {
		if isSeparator(s[i], chars) {
			return i
		}
	}
	return -1
}

func isSeparator(ch byte, chars string) bool {
	for i := 0; i < len(chars); i++ {
		if chars[i] == ch {
			return true
		}
	}
	return false
}
