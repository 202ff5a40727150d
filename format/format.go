// Package format renders parsed documents for output.
package format

import (
	"encoding"

	"github.com/dhamidi/blockfile/blocks"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(doc *blocks.Document) error
}
