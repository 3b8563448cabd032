package extract

import (
	"net/url"
	"strings"
	"testing"
)

// renderBody parses a body fragment and converts it with the given base
// address, mirroring how the pipeline invokes the extractor.
func renderBody(t *testing.T, body, base string) string {
	t.Helper()
	doc, err := ParseDocument("<html><head></head><body>" + body + "</body></html>")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		t.Fatalf("parse base: %v", err)
	}
	return Markdown(ContentRoot(doc), baseURL)
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Foo  ", "Foo"},
		{"a\n\n  b\tc", "a b c"},
		{"", ""},
		{"   ", ""},
		{"one two", "one two"},
	}
	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Fatalf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHeadings(t *testing.T) {
	for level, tag := range map[int]string{1: "h1", 2: "h2", 3: "h3", 4: "h4", 5: "h5", 6: "h6"} {
		got := renderBody(t, "<"+tag+">Foo</"+tag+">", "https://x.com")
		want := strings.Repeat("#", level) + " Foo\n\n"
		if got != want {
			t.Fatalf("%s: got %q, want %q", tag, got, want)
		}
	}
}

func TestHeadingCleansText(t *testing.T) {
	got := renderBody(t, "<h2>  Spaced\n  Out </h2>", "https://x.com")
	if got != "## Spaced Out\n\n" {
		t.Fatalf("got %q", got)
	}
}

func TestParagraph(t *testing.T) {
	if got := renderBody(t, "<p>Hello world</p>", "https://x.com"); got != "Hello world\n\n" {
		t.Fatalf("got %q", got)
	}
	// Empty paragraphs vanish entirely.
	if got := renderBody(t, "<p>   </p>", "https://x.com"); got != "" {
		t.Fatalf("empty paragraph produced %q", got)
	}
}

func TestUnorderedList(t *testing.T) {
	got := renderBody(t, "<ul><li>A</li><li>B</li></ul>", "https://x.com")
	if got != "* A\n* B\n\n" {
		t.Fatalf("got %q", got)
	}
	if got := renderBody(t, "<ul></ul>", "https://x.com"); got != "" {
		t.Fatalf("empty list produced %q", got)
	}
}

func TestOrderedList(t *testing.T) {
	got := renderBody(t, "<ol><li>A</li><li>B</li></ol>", "https://x.com")
	if got != "1. A\n2. B\n\n" {
		t.Fatalf("got %q", got)
	}
}

func TestLinkResolution(t *testing.T) {
	got := renderBody(t, `<a href="/p">Go</a>`, "https://x.com/a/b")
	if got != "[Go](https://x.com/p)" {
		t.Fatalf("got %q", got)
	}
}

func TestLinkRelativePath(t *testing.T) {
	got := renderBody(t, `<a href="sibling">Go</a>`, "https://x.com/a/b")
	if got != "[Go](https://x.com/a/sibling)" {
		t.Fatalf("got %q", got)
	}
}

func TestLinkSkippedSchemes(t *testing.T) {
	for _, href := range []string{"javascript:void(0)", "mailto:team@x.com"} {
		got := renderBody(t, `<a href="`+href+`">Text</a>`, "https://x.com")
		if got != "Text" {
			t.Fatalf("href %q: got %q", href, got)
		}
	}
	// No target at all renders just the text.
	if got := renderBody(t, `<a>Bare</a>`, "https://x.com"); got != "Bare" {
		t.Fatalf("got %q", got)
	}
}

func TestImage(t *testing.T) {
	got := renderBody(t, `<img src="/img/logo.png" alt="Logo">`, "https://x.com/docs/")
	if got != "![Logo](https://x.com/img/logo.png)" {
		t.Fatalf("got %q", got)
	}
	if got := renderBody(t, `<img alt="no source">`, "https://x.com"); got != "" {
		t.Fatalf("sourceless image produced %q", got)
	}
	got = renderBody(t, `<img src="pic.png">`, "https://x.com/a/")
	if got != "![](https://x.com/a/pic.png)" {
		t.Fatalf("got %q", got)
	}
}

func TestCodeBlockPreservesRawText(t *testing.T) {
	got := renderBody(t, "<pre>x := 1\n  y := 2</pre>", "https://x.com")
	want := "```\nx := 1\n  y := 2\n```\n\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBlockquote(t *testing.T) {
	got := renderBody(t, "<blockquote>Famous words</blockquote>", "https://x.com")
	if got != "> Famous words\n\n" {
		t.Fatalf("got %q", got)
	}
}

func TestHorizontalRuleAndBreak(t *testing.T) {
	if got := renderBody(t, "<hr>", "https://x.com"); got != "---\n\n" {
		t.Fatalf("hr: got %q", got)
	}
	if got := renderBody(t, "<br>", "https://x.com"); got != "\n" {
		t.Fatalf("br: got %q", got)
	}
}

func TestTablePlaceholder(t *testing.T) {
	got := renderBody(t, "<table><tr><td>cell</td></tr></table>", "https://x.com")
	if got != "[table omitted]\n\n" {
		t.Fatalf("got %q", got)
	}
}

func TestExcludedElements(t *testing.T) {
	body := `<script>var x;</script><style>.a{}</style><noscript>no</noscript>` +
		`<svg><circle/></svg><nav><a href="/x">nav</a></nav><footer>foot</footer>` +
		`<iframe src="/f"></iframe><p>Kept</p>`
	got := renderBody(t, body, "https://x.com")
	if got != "Kept\n\n" {
		t.Fatalf("got %q", got)
	}
}

func TestHiddenElements(t *testing.T) {
	cases := []string{
		`<p style="display: none">secret</p>`,
		`<p style="visibility:hidden">secret</p>`,
		`<div hidden><p>secret</p></div>`,
	}
	for _, body := range cases {
		if got := renderBody(t, body, "https://x.com"); got != "" {
			t.Fatalf("%s produced %q", body, got)
		}
	}
}

func TestContainerConcatenation(t *testing.T) {
	body := `<div><h1>Title</h1><section><p>One</p><p>Two</p></section></div>`
	got := renderBody(t, body, "https://x.com")
	if got != "# Title\n\nOne\n\nTwo\n\n" {
		t.Fatalf("got %q", got)
	}
}

func TestContainerTextNodes(t *testing.T) {
	got := renderBody(t, `<div>Hello <span>inline</span></div>`, "https://x.com")
	if got != "Hello inline " {
		t.Fatalf("got %q", got)
	}
}

func TestDeterminism(t *testing.T) {
	body := `<main><h1>T</h1><ul><li>a</li></ul><p>Para with <a href="/l">link</a>.</p></main>`
	first := renderBody(t, body, "https://x.com")
	second := renderBody(t, body, "https://x.com")
	if first != second {
		t.Fatalf("conversion is not deterministic:\n%q\n%q", first, second)
	}
}

func TestNilRoot(t *testing.T) {
	if got := Markdown(nil, nil); got != "" {
		t.Fatalf("nil root produced %q", got)
	}
}
