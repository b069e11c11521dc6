package gamearchive

import (
	"fmt"
	"strings"
	"time"
)

// BuildPGN renders a record as a PGN document. Player names are unknown for
// channel games, so only the player who ended the game is recorded, as a comment tag.
func BuildPGN(rec Record) string {
	var b strings.Builder
	date := rec.EndedAt
	if date.IsZero() {
		date = time.Now()
	}
	score := mapResultToPGN(rec.Result)

	b.WriteString("[Event \"puppy chess\"]\n")
	fmt.Fprintf(&b, "[Site \"%s\"]\n", sanitizePGN(rec.SessionKey))
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	b.WriteString("[White \"?\"]\n[Black \"?\"]\n")
	if name := sanitizePGN(rec.FinalMoverName); name != "" {
		fmt.Fprintf(&b, "[Annotator \"%s\"]\n", name)
	}
	if method := sanitizePGN(rec.Method); method != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", strings.ToLower(method))
	}
	fmt.Fprintf(&b, "[Result \"%s\"]\n\n", score)

	for i := 0; i < len(rec.Moves); i += 2 {
		fmt.Fprintf(&b, "%d. %s ", i/2+1, strings.TrimSpace(rec.Moves[i]))
		if i+1 < len(rec.Moves) {
			b.WriteString(strings.TrimSpace(rec.Moves[i+1]))
			b.WriteByte(' ')
		}
	}
	b.WriteString(score)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
