package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"grocerbot/internal/session"
)

// historyLines bounds the chat section of the summary.
const historyLines = 20

// Render writes a one-document PDF summary of the cart and recent chat.
func Render(w io.Writer, s *session.Session) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Grocery Assistant Summary", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, safeText("Session: "+s.ID), "", 1, "", false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(0, 8, fmt.Sprintf("Cart Items (%d):", len(s.Cart.Items)), "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, it := range s.Cart.Items {
		line := fmt.Sprintf("- %s - Rs%s x %d = Rs%s", it.Name, money(it.UnitPrice), it.Quantity, money(it.LineTotal))
		pdf.MultiCell(0, 7, safeText(line), "", "", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Subtotal: Rs"+money(s.Cart.Subtotal), "", 1, "", false, 0, "")
	pdf.Ln(8)

	pdf.CellFormat(0, 8, "Recent Chat History:", "", 1, "", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 11)
	for _, t := range s.RecentTurns(historyLines) {
		pdf.MultiCell(0, 7, safeText(capitalize(t.Role)+": "+t.Message), "", "", false)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// safeText keeps printable ASCII plus newline and tab; anything else
// becomes '?'. The core PDF fonts cannot encode it.
func safeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
