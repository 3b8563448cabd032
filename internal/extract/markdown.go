// Package extract converts rendered document trees into Markdown and pulls
// page metadata out of them. The conversion is a pure recursive visitor over
// node kinds: the same tree and base address always produce the same text.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	newlineRun    = regexp.MustCompile(`\n+`)
)

// CleanText trims leading/trailing whitespace and collapses interior
// whitespace runs. Code and preformatted blocks bypass it entirely.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return newlineRun.ReplaceAllString(s, "\n")
}

// Markdown renders the tree rooted at n into Markdown. Relative link targets
// and image sources are resolved against base, which must be the address the
// page was actually navigated to. A nil root yields the empty string.
func Markdown(n *html.Node, base *url.URL) string {
	if n == nil {
		return ""
	}
	return renderNode(n, base)
}

func renderNode(n *html.Node, base *url.URL) string {
	switch n.Type {
	case html.DocumentNode:
		return renderChildren(n, base)
	case html.TextNode:
		return CleanText(n.Data)
	case html.ElementNode:
		// fall through to the per-kind rules below
	default:
		// comments, doctypes
		return ""
	}

	if isHidden(n) {
		return ""
	}

	switch n.Data {
	case "script", "style", "noscript", "svg", "nav", "footer", "iframe":
		return ""
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		return fmt.Sprintf("%s %s\n\n", strings.Repeat("#", level), CleanText(textContent(n)))
	case "p":
		txt := CleanText(textContent(n))
		if txt == "" {
			return ""
		}
		return txt + "\n\n"
	case "ul":
		return renderList(n, func(int) string { return "* " })
	case "ol":
		return renderList(n, func(i int) string { return fmt.Sprintf("%d. ", i+1) })
	case "a":
		return renderLink(n, base)
	case "img":
		return renderImage(n, base)
	case "code", "pre":
		// Raw content, no cleaning inside the fence.
		return "```\n" + textContent(n) + "\n```\n\n"
	case "blockquote":
		return renderBlockquote(n)
	case "hr":
		return "---\n\n"
	case "br":
		return "\n"
	case "table":
		// Structural table conversion is deliberately not attempted.
		return "[table omitted]\n\n"
	case "div", "section", "article", "main", "aside", "header", "span":
		return renderChildren(n, base)
	default:
		if n.FirstChild != nil {
			return renderChildren(n, base)
		}
		return CleanText(textContent(n))
	}
}

// renderChildren applies the container rule: element children recurse, text
// children contribute their cleaned text followed by a single space.
func renderChildren(n *html.Node, base *url.URL) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			b.WriteString(renderNode(c, base))
		case html.TextNode:
			if txt := CleanText(c.Data); txt != "" {
				b.WriteString(txt)
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

func renderList(n *html.Node, marker func(int) string) string {
	var b strings.Builder
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		b.WriteString(marker(i))
		b.WriteString(CleanText(textContent(c)))
		b.WriteByte('\n')
		i++
	}
	if i == 0 {
		return ""
	}
	b.WriteByte('\n')
	return b.String()
}

func renderLink(n *html.Node, base *url.URL) string {
	txt := CleanText(textContent(n))
	href := attr(n, "href")
	if href == "" || skippableScheme(href) {
		return txt
	}
	return "[" + txt + "](" + resolveRef(base, href) + ")"
}

func renderImage(n *html.Node, base *url.URL) string {
	src := attr(n, "src")
	if src == "" {
		return ""
	}
	return "![" + attr(n, "alt") + "](" + resolveRef(base, src) + ")"
}

func renderBlockquote(n *html.Node) string {
	txt := CleanText(textContent(n))
	lines := strings.Split(txt, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n") + "\n\n"
}

// isHidden approximates the rendered-visibility rule on a serialized DOM
// snapshot: the hidden attribute or an inline display:none/visibility:hidden.
func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// textContent concatenates every descendant text node verbatim.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func skippableScheme(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:")
}

// resolveRef resolves ref against base, falling back to ref verbatim when it
// cannot be parsed.
func resolveRef(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
