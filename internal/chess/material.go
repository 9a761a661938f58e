package chess

// GetMaterialCount sums the standard values of the live pieces of each side.
func (g *Game) GetMaterialCount() MaterialCount {
	var count MaterialCount
	for _, p := range g.board.squares {
		if p == nil {
			continue
		}
		if p.Color == White {
			count.White += StandardPieceValues[p.Kind]
		} else {
			count.Black += StandardPieceValues[p.Kind]
		}
	}
	return count
}

// CapturedPieces returns the records of c's pieces that were captured, in
// capture order of their IDs.
func (g *Game) CapturedPieces(c Color) []*Piece {
	var out []*Piece
	for _, p := range g.pieces {
		if p.Color == c && p.Captured {
			out = append(out, p)
		}
	}
	return out
}
