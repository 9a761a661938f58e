package chess

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	notnil "github.com/notnil/chess"
)

func moveKey(from, to Square, promo string) string {
	return from.String() + to.String() + promo
}

func ourMoveKeys(g *Game) []string {
	var keys []string
	for _, m := range g.ValidMoves() {
		keys = append(keys, moveKey(m.From, m.To, strings.ToLower(m.Promotion.Symbol())))
	}
	sort.Strings(keys)
	return keys
}

func referenceMoveKeys(ref *notnil.Game) []string {
	var keys []string
	for _, m := range ref.ValidMoves() {
		keys = append(keys, moveKey(Square(m.S1()), Square(m.S2()), m.Promo().String()))
	}
	sort.Strings(keys)
	return keys
}

// TestLegalMovesMatchReference plays seeded random games and compares the
// legal move list of every position against github.com/notnil/chess.
func TestLegalMovesMatchReference(t *testing.T) {
	for seed := int64(1); seed <= 12; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := NewGame(DefaultRules())
		ref := notnil.NewGame()

		for ply := 0; ply < 300; ply++ {
			if g.State().Status != StatusActive || ref.Outcome() != notnil.NoOutcome {
				break
			}
			ours, theirs := ourMoveKeys(g), referenceMoveKeys(ref)
			if strings.Join(ours, " ") != strings.Join(theirs, " ") {
				t.Fatalf("seed %d ply %d: move lists differ\nboard:\n%s\nours:   %v\ntheirs: %v",
					seed, ply, g.Board(), ours, theirs)
			}

			moves := g.ValidMoves()
			m := moves[rng.Intn(len(moves))]
			key := moveKey(m.From, m.To, strings.ToLower(m.Promotion.Symbol()))

			if _, err := g.Apply(m); err != nil {
				t.Fatalf("seed %d ply %d: %s: %v", seed, ply, key, err)
			}
			var applied bool
			for _, rm := range ref.ValidMoves() {
				if moveKey(Square(rm.S1()), Square(rm.S2()), rm.Promo().String()) == key {
					if err := ref.Move(rm); err != nil {
						t.Fatalf("seed %d ply %d: reference rejected %s: %v", seed, ply, key, err)
					}
					applied = true
					break
				}
			}
			if !applied {
				t.Fatalf("seed %d ply %d: reference has no move %s", seed, ply, key)
			}

			if ref.Method() == notnil.Checkmate && g.State().Method != Checkmate {
				t.Fatalf("seed %d ply %d: reference mates but we report %s", seed, ply, g.State().Method)
			}
		}
	}
}

// TestLegalMovesNeverLeaveKingInCheck checks the legality filter against the
// pseudo-legal generator along random games.
func TestLegalMovesNeverLeaveKingInCheck(t *testing.T) {
	for seed := int64(100); seed < 106; seed++ {
		rng := rand.New(rand.NewSource(seed))
		g := NewGame(Rules{StrictCastling: seed%2 == 0})

		for ply := 0; ply < 200 && g.State().Status == StatusActive; ply++ {
			state := g.State()
			for _, p := range g.Board().Pieces(state.Turn) {
				pseudo := PseudoLegalMoves(g.Board(), p.Square, state.EnPassant)
				legal := g.LegalMoves(p.Square)
				if legal&^pseudo != 0 {
					t.Fatalf("seed %d: legal moves of %s are not pseudo-legal", seed, p.Square)
				}
				for _, to := range legal.Squares() {
					scratch := simulate(g.Board(), p.Square, to, state.EnPassant)
					if IsInCheck(&scratch, state.Turn) {
						t.Fatalf("seed %d: %s%s leaves the king in check", seed, p.Square, to)
					}
				}
			}

			moves := g.ValidMoves()
			rec, err := g.Apply(moves[rng.Intn(len(moves))])
			if err != nil {
				t.Fatal(err)
			}
			if rec.Check != IsInCheck(g.Board(), g.State().Turn) {
				t.Fatalf("seed %d: record check flag %v disagrees with the board", seed, rec.Check)
			}
			if rec.Checkmate != IsCheckmate(g.Board(), g.State().Turn, g.State().EnPassant, g.Rules()) {
				t.Fatalf("seed %d: record checkmate flag disagrees with the board", seed)
			}
		}
	}
}
