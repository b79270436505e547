// =============================================================================
// Oficina Recibos - Document Renderer
// =============================================================================
//
// A renderer turns one receipt into a printable document. It is a pure
// function of its input: it keeps no state between calls and writes no
// files; the caller decides where the bytes go.
//
// =============================================================================

package render

import (
	"time"

	"github.com/ginjaninja78/oficina-recibos/internal/types"
)

// Renderer produces a finished document from a receipt.
type Renderer interface {
	Render(ctx Context) ([]byte, error)
}

// Context is everything a document shows.
type Context struct {
	// Receipt is the fully assembled receipt, total included.
	Receipt types.Receipt

	// Shop identifies the workshop in the document header.
	Shop types.ShopInfo

	// Logo is an optional PNG or JPEG image for the header.
	Logo []byte

	// Now is the issue date and time printed on the document.
	Now time.Time
}

// Date and time layouts used on documents and receipts.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04:05"
)
