package blocks

import (
	"fmt"
	"strings"

	"github.com/dhamidi/blockfile/stream"
)

// Diagnostic is one recorded parse failure.
type Diagnostic struct {
	Pos     stream.Position
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// Diagnostics aggregates all failures of one parse. Parsing is
// best-effort: diagnostics accumulate and the parse still completes.
type Diagnostics struct {
	List []Diagnostic
}

func (d *Diagnostics) Error() string {
	switch len(d.List) {
	case 0:
		return "parse failed"
	case 1:
		return d.List[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:", len(d.List))
	for _, diag := range d.List {
		b.WriteString("\n\t")
		b.WriteString(diag.String())
	}
	return b.String()
}

// Empty reports whether no failure was recorded.
func (d *Diagnostics) Empty() bool { return len(d.List) == 0 }

func (d *Diagnostics) add(pos stream.Position, format string, args ...any) {
	d.List = append(d.List, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...)})
}
