package content

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"  a\n\n\n\nb  ", "a\n\nb"},
		{"a\n\nb", "a\n\nb"},
		{"a\n\n\n\n\n\nb\n\n\nc", "a\n\nb\n\nc"},
	}

	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"a b  c", 3},
		{"one\ntwo\tthree four", 4},
	}

	for _, tt := range tests {
		if got := CountWords(tt.in); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := `<html><head><style>body { color: red; }</style>
<script>var x = "hidden";</script></head>
<body><h1>Hello</h1><p>world  and <b>more</b></p></body></html>`

	got := StripHTML(in)
	want := "Hello world and more"
	if got != want {
		t.Errorf("StripHTML = %q, want %q", got, want)
	}
}

func TestStripHTMLMalformed(t *testing.T) {
	// Unclosed tags and stray brackets must degrade, not fail.
	got := StripHTML("<p>ok <b>bold <script>bad(")
	if !strings.Contains(got, "ok") || !strings.Contains(got, "bold") {
		t.Errorf("expected visible text to survive, got %q", got)
	}

	if strings.Contains(got, "bad(") {
		t.Errorf("script content must be dropped, got %q", got)
	}
}

func TestGenerateExcerpt(t *testing.T) {
	short := "just five words right here"
	if got := GenerateExcerpt(short, 5); got != short {
		t.Errorf("expected short content unchanged, got %q", got)
	}

	long := "one two  three\nfour five six"
	got := GenerateExcerpt(long, 4)
	if got != "one two three four..." {
		t.Errorf("GenerateExcerpt = %q", got)
	}

	if n := CountWords(strings.TrimSuffix(got, "...")); n != 4 {
		t.Errorf("excerpt has %d words, want 4", n)
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("", ""); got != 0 {
		t.Errorf("Similarity of two empty documents = %v, want 0", got)
	}

	if got := Similarity("a b c", "a b c"); got != 1 {
		t.Errorf("Similarity of identical documents = %v, want 1", got)
	}

	if got := Similarity("Hello World", "hello world"); got != 1 {
		t.Errorf("Similarity must be case-insensitive, got %v", got)
	}

	// Vocabularies {a,b,c} and {b,c,d}: 2 shared of 4 total.
	if got := Similarity("a b c", "b c d"); got != 0.5 {
		t.Errorf("Similarity = %v, want 0.5", got)
	}

	if got := Similarity("a b", "x y"); got != 0 {
		t.Errorf("Similarity of disjoint documents = %v, want 0", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the cat and the dog", "en"},
		{"el gato que vive en la casa pero no sale", "es"},
		{"le chat est dans la maison avec les autres", "fr"},
		{"der Hund und die Katze sind nicht da", "de"},
		{"", ""},
		{"lorem ipsum dolor sit amet", ""},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.in); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	md, err := HTMLToMarkdown(`<h1>Title</h1><p>Some <a href="/rel">link</a>.</p>`, "example.com")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(md, "# Title") {
		t.Errorf("expected heading in markdown, got %q", md)
	}

	if !strings.Contains(md, "example.com/rel") {
		t.Errorf("expected relative link resolved against domain, got %q", md)
	}
}

func TestFindTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"# My Title\n\nBody text.", "My Title"},
		{"Intro paragraph.\n\n# Later Title\n\nMore.", "Later Title"},
		{"## Only Subheadings\n\nBody.", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FindTitle(tt.in); got != tt.want {
			t.Errorf("FindTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
