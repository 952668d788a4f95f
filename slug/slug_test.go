package slug

import (
	"regexp"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Law & Technology", "law-and-technology"},
		{"Café Crème Brûlée", "cafe-creme-brulee"},
		{"What's New in DeFi?", "whats-new-in-defi"},
		{"multiple   spaces\tand\ttabs", "multiple-spaces-and-tabs"},
		{"already-a-slug", "already-a-slug"},
		{"a -- b", "a-b"},
		{"--edge--", "edge"},
		{"snake_case_name", "snake-case-name"},
		{"SEC v. Ripple (2023)", "sec-v-ripple-2023"},
		{"", ""},
		{"!!!???", ""},
		{"日本語", ""},
		{"Smart\u00a0Contracts", "smart-contracts"},
		{"10\u202fkm", "10-km"},
		{"em\u2003space", "em-space"},
		{"vertical\vtab", "vertical-tab"},
		{"ideographic\u3000space", "ideographic-space"},
	}
	for _, tt := range tests {
		got := Slugify(tt.input)
		if got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSlugifyAlphabet(t *testing.T) {
	valid := regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)
	inputs := []string{
		"Ünïcödé — dashes – everywhere",
		"tabs\tnewlines\nand\r\nreturns",
		"-_-_-",
		"100% legit & compliant!!",
		"emoji 🚀 launch",
		"MiXeD CaSe 123",
		"trailing hyphen -",
		"ﬁligature",
	}
	for _, in := range inputs {
		got := Slugify(in)
		if !valid.MatchString(got) {
			t.Errorf("Slugify(%q) = %q, not a clean slug", in, got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"hello-world", true},
		{"abc123", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Upper", false},
		{"../etc", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestStripInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**Bold** heading", "Bold heading"},
		{"The `go` toolchain", "The go toolchain"},
		{"See [the ruling](https://example.com)", "See the ruling"},
		{"![logo](/logo.png) Brand", "logo Brand"},
		{"*soft* and ~~gone~~", "soft and gone"},
		{"<span>raw</span> html", "raw html"},
	}
	for _, tt := range tests {
		if got := StripInline(tt.input); got != tt.expected {
			t.Errorf("StripInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSluggerDeduplicates(t *testing.T) {
	s := NewSlugger()
	got := []string{
		s.Slug("Overview"),
		s.Slug("Overview"),
		s.Slug("Details"),
		s.Slug("Overview"),
	}
	want := []string{"overview", "overview-1", "details", "overview-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSluggerSuffixCollision(t *testing.T) {
	s := NewSlugger()
	first := s.Slug("Overview 1")
	second := s.Slug("Overview")
	third := s.Slug("Overview")
	if first != "overview-1" || second != "overview" {
		t.Fatalf("unexpected base slugs: %q %q", first, second)
	}
	if third == first {
		t.Errorf("third slug %q collides with an explicit heading", third)
	}
	if third != "overview-2" {
		t.Errorf("third slug = %q, want overview-2", third)
	}
}

func TestSluggerFallback(t *testing.T) {
	var s Slugger
	if got := s.Slug("???"); got != Fallback {
		t.Errorf("Slug(???) = %q, want %q", got, Fallback)
	}
	if got := s.Slug("!!!"); got != Fallback+"-1" {
		t.Errorf("second symbol-only slug = %q, want %q", got, Fallback+"-1")
	}
}

func TestSluggerReserve(t *testing.T) {
	s := NewSlugger()
	s.Reserve("intro")
	if got := s.Slug("Intro"); got != "intro-1" {
		t.Errorf("Slug after Reserve = %q, want intro-1", got)
	}
}

func TestSluggerDeterministic(t *testing.T) {
	run := func() []string {
		s := NewSlugger()
		var out []string
		for _, h := range []string{"Background", "Analysis", "Background", "Analysis", "Conclusion"} {
			out = append(out, s.Slug(h))
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("run mismatch at %d: %q vs %q", i, a[i], b[i])
		}
	}
}
