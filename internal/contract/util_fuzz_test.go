package contract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText checks that truncation never grows the text past the limit.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		s     string
		width int
	}{
		{"time_coverage_start", 10},
		{"", 0},
		{"short", 10},
		{"ñandú radar", 5},
		{"abc", 3},
	}
	for _, seed := range seeds {
		f.Add(seed.s, seed.width)
	}

	f.Fuzz(func(t *testing.T, s string, width int) {
		if !utf8.ValidString(s) || width > 10000 {
			return
		}
		out := TruncateText(s, width)
		if width > 3 && utf8.RuneCountInString(out) > width {
			t.Errorf("TruncateText(%q, %d) = %q exceeds width", s, width, out)
		}
		if utf8.RuneCountInString(s) <= width && out != s {
			t.Errorf("TruncateText(%q, %d) changed text that fits", s, width)
		}
	})
}

// FuzzParseBoolString checks that only the known spellings are accepted.
func FuzzParseBoolString(f *testing.F) {
	for _, s := range []string{"yes", "NO", "true", "0", "", "maybe"} {
		f.Add(s)
	}
	known := map[string]bool{"yes": true, "true": true, "1": true, "no": false, "false": false, "0": false}
	f.Fuzz(func(t *testing.T, s string) {
		b, err := ParseBoolString(s)
		want, ok := known[strings.ToLower(s)]
		if ok != (err == nil) {
			t.Fatalf("ParseBoolString(%q) err=%v, known=%v", s, err, ok)
		}
		if ok && b != want {
			t.Errorf("ParseBoolString(%q) = %v, want %v", s, b, want)
		}
	})
}
