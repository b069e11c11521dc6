package irisfast

import "strings"

const (
	seeMorePadding  = 500
	zeroWidthSpace  = "\u200b"
	seeMoreMinBytes = 400
)

// FoldLong keeps the first line of a long or multi-line reply visible and
// pushes the rest behind KakaoTalk's "see more" fold by padding with
// zero-width spaces. Short single-line replies are returned unchanged.
func FoldLong(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	head, body, multi := strings.Cut(text, "\n")
	if !multi && len(text) < seeMoreMinBytes {
		return text
	}
	if !multi {
		head, body = "", text
	}

	var b strings.Builder
	b.Grow(len(text) + seeMorePadding*len(zeroWidthSpace) + 1)
	b.WriteString(head)
	b.WriteString(strings.Repeat(zeroWidthSpace, seeMorePadding))
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}
