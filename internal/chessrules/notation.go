package chessrules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/park285/woofer-bot/internal/chessgame"
)

var (
	sanPattern = regexp.MustCompile(`^(?:[KQRBN][a-h]?[1-8]?x?[a-h][1-8]|[a-h](?:x[a-h])?[1-8](?:=?[QRBNqrbn])?|O-O(?:-O)?|0-0(?:-0)?)[+#]?[!?]{0,2}$`)
	uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)
)

// ParseMove accepts standard algebraic notation (e4, Nxf3+, exd8=Q#, O-O) or
// coordinate notation (e2e4, e7e8q). It checks syntax only.
func ParseMove(text string) (chessgame.Move, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return chessgame.Move{}, fmt.Errorf("%w: empty", chessgame.ErrParse)
	}
	if uciPattern.MatchString(strings.ToLower(raw)) && !sanPattern.MatchString(raw) {
		return chessgame.Move{Raw: raw, UCI: strings.ToLower(raw)}, nil
	}
	if sanPattern.MatchString(raw) {
		return chessgame.Move{Raw: raw, SAN: normalizeSAN(raw)}, nil
	}
	return chessgame.Move{}, fmt.Errorf("%w: %q", chessgame.ErrParse, raw)
}

// normalizeSAN drops check and annotation suffixes, spells castling with
// letters and writes promotions as e8=Q.
func normalizeSAN(s string) string {
	s = strings.TrimRight(s, "+#!?")
	s = strings.ReplaceAll(s, "0", "O")
	if !strings.HasPrefix(s, "O-O") {
		last := s[len(s)-1]
		if strings.ContainsRune("QRBNqrbn", rune(last)) && s[0] >= 'a' && s[0] <= 'h' {
			body := strings.TrimSuffix(s[:len(s)-1], "=")
			s = body + "=" + strings.ToUpper(string(last))
		}
	}
	return s
}
