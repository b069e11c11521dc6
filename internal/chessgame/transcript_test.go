package chessgame

import "testing"

func TestFormatTranscript(t *testing.T) {
	cases := []struct {
		moves []string
		want  string
	}{
		{nil, ""},
		{[]string{"e4"}, "1. e4"},
		{[]string{"e4", "e5"}, "1. e4 e5"},
		{[]string{"e4", "e5", "Nf3"}, "1. e4 e5 2. Nf3"},
		{[]string{"f3", "e5", "g4", "Qh4#"}, "1. f3 e5 2. g4 Qh4#"},
	}
	for _, c := range cases {
		if got := FormatTranscript(c.moves); got != c.want {
			t.Fatalf("FormatTranscript(%v) = %q, want %q", c.moves, got, c.want)
		}
	}
}
