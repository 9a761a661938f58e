package chess

import (
	"strconv"
	"strings"
)

// SAN renders the record in standard algebraic notation.
func (r *ExecutionRecord) SAN() string {
	var b strings.Builder
	switch r.Castle {
	case Kingside:
		b.WriteString("O-O")
	case Queenside:
		b.WriteString("O-O-O")
	default:
		b.WriteString(r.Kind.Symbol())
		b.WriteString(r.Disambiguation)
		if r.IsCapture() {
			if r.Kind == Pawn {
				b.WriteString(r.From.String()[:1])
			}
			b.WriteByte('x')
		}
		b.WriteString(r.To.String())
		if r.Promotion != NoKind {
			b.WriteByte('=')
			b.WriteString(r.Promotion.Symbol())
		}
	}
	if r.Checkmate {
		b.WriteByte('#')
	} else if r.Check {
		b.WriteByte('+')
	}
	return b.String()
}

// MoveText formats a numbered history entry, e.g. "12. Nf3" or "12... Nf6".
func (r *ExecutionRecord) MoveText() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(r.MoveNumber))
	if r.Color == White {
		b.WriteString(". ")
	} else {
		b.WriteString("... ")
	}
	b.WriteString(r.SAN())
	return b.String()
}
