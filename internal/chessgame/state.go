package chessgame

import "time"

// Position is an immutable board snapshot. Its encoding belongs to the Oracle
// (FEN for the real rules engine); the session manager only stores and compares it.
type Position string

// Move is a syntactically valid move that has not been checked against a position.
type Move struct {
	Raw string // as typed by the player
	SAN string // normalized algebraic notation, empty for coordinate input
	UCI string // coordinate notation (e2e4), empty for algebraic input
}

func (m Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	return m.UCI
}

// Outcome is the terminal result of a game.
type Outcome int

const (
	NoOutcome Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "white"
	case BlackWins:
		return "black"
	case Draw:
		return "draw"
	default:
		return "none"
	}
}

// Headline is the announcement line for a finished game.
func (o Outcome) Headline() string {
	switch o {
	case WhiteWins:
		return "White wins!"
	case BlackWins:
		return "Black wins!"
	case Draw:
		return "Draw!"
	default:
		return ""
	}
}

// Score is the PGN result token.
func (o Outcome) Score() string {
	switch o {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// State is the game held for one session key.
// LastMover is empty exactly when Moves is empty.
type State struct {
	Position      Position
	LastMover     string
	LastMoverName string
	Moves         []string
	StartedAt     time.Time
}

// Fresh reports whether no move has been committed since creation or the last reset.
func (s State) Fresh() bool { return len(s.Moves) == 0 }

// Transcript renders the move history as numbered pairs.
func (s State) Transcript() string { return FormatTranscript(s.Moves) }

func (s State) clone() State {
	c := s
	if s.Moves != nil {
		c.Moves = append([]string(nil), s.Moves...)
	}
	return c
}
