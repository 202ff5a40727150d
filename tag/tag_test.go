package tag

import "testing"

func TestParseSplitting(t *testing.T) {
	rules := DefaultDelimiters()

	tests := []struct {
		input string
		id    string
		body  string
	}{
		{"color=red", "color", "red"},
		{"color:red", "color", "red"},
		{"color red", "color", "red"},
		{"color = red", "color", "red"},
		{"bare", "bare", ""},
		{"{color=red}", "color", "red"},
		{"  color=red  ", "color", "red"},
		{"speed=  1.5 ", "speed", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := Parse(tt.input, rules)
			if d.ID != tt.id {
				t.Errorf("ID = %q, want %q", d.ID, tt.id)
			}
			if d.Body != tt.body {
				t.Errorf("Body = %q, want %q", d.Body, tt.body)
			}
		})
	}
}

func TestParseClosingFlags(t *testing.T) {
	rules := DefaultDelimiters()

	tests := []struct {
		input      string
		id         string
		closing    bool
		selfClosed bool
	}{
		{"/tag/", "tag", true, true},
		{"/tag", "tag", true, false},
		{"tag/", "tag", false, true},
		{"tag", "tag", false, false},
		{"{/tag}", "tag", true, false},
		{"{tag/}", "tag", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := Parse(tt.input, rules)
			if d.ID != tt.id {
				t.Errorf("ID = %q, want %q", d.ID, tt.id)
			}
			if d.IsClosing() != tt.closing {
				t.Errorf("IsClosing() = %v, want %v", d.IsClosing(), tt.closing)
			}
			if d.IsSelfClosed() != tt.selfClosed {
				t.Errorf("IsSelfClosed() = %v, want %v", d.IsSelfClosed(), tt.selfClosed)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	rules := DefaultDelimiters()
	for _, input := range []string{"", "   ", "{}", "{  }", "\t\r\n"} {
		d := Parse(input, rules)
		if !d.IsEmpty() && input != "" {
			// "{}" strips to empty content; closing flags stay unset.
			t.Errorf("Parse(%q) = %+v, want empty", input, d)
		}
		if d.ID != "" || d.Body != "" {
			t.Errorf("Parse(%q): ID=%q Body=%q, want empty fields", input, d.ID, d.Body)
		}
	}
}

func TestParseIdempotent(t *testing.T) {
	rules := DefaultDelimiters()
	inputs := []string{"color=red", "bare", "a:b", "x = y z", "/end/", "icon:arrow right"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := Parse(input, rules)
			rejoined := first.ID
			if first.Body != "" {
				rejoined = first.ID + "=" + first.Body
			}
			second := Parse(rejoined, rules)
			if second.ID != first.ID || second.Body != first.Body {
				t.Errorf("re-parse of %q = (%q, %q), want (%q, %q)",
					rejoined, second.ID, second.Body, first.ID, first.Body)
			}
		})
	}
}

func TestParseBytesMatchesParse(t *testing.T) {
	rules := DefaultDelimiters()
	inputs := []string{"color=red", "{/tag/}", "  {a : b}  ", "", "bare/", "@meta=5"}

	for _, input := range inputs {
		s := Parse(input, rules)
		b := ParseBytes([]byte(input), rules)
		if s != b {
			t.Errorf("Parse(%q) = %+v, ParseBytes = %+v", input, s, b)
		}
	}
}

func TestParseCustomDelimiters(t *testing.T) {
	rules := Delimiters{TagOpen: "<", TagClose: ">", Separators: "=", RegionClose: ""}
	d := Parse("</x=1>", rules)
	if d.ID != "/x" || d.Body != "1" {
		t.Errorf("without region-close marker: ID=%q Body=%q, want %q %q", d.ID, d.Body, "/x", "1")
	}
	if d.IsClosing() || d.IsSelfClosed() {
		t.Error("closing flags set with region-close disabled")
	}
}
