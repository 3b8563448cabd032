package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadata(t *testing.T) {
	doc, err := ParseDocument(`<html><head>
<title> Docs Home </title>
<meta name="description" content="All the docs.">
<link rel="canonical" href="https://docs.x.com/home">
</head><body></body></html>`)
	require.NoError(t, err)

	meta := Metadata(doc, "https://x.com/home")
	require.Equal(t, "Docs Home", meta.Title)
	require.Equal(t, "All the docs.", meta.Description)
	require.Equal(t, "https://docs.x.com/home", meta.Canonical)
}

func TestMetadataDefaults(t *testing.T) {
	doc, err := ParseDocument(`<html><head></head><body><p>hi</p></body></html>`)
	require.NoError(t, err)

	meta := Metadata(doc, "https://x.com/page")
	require.Empty(t, meta.Title)
	require.Empty(t, meta.Description)
	require.Equal(t, "https://x.com/page", meta.Canonical)
}

func TestMetadataRelativeCanonical(t *testing.T) {
	doc, err := ParseDocument(`<html><head><link rel="canonical" href="/canonical"></head><body></body></html>`)
	require.NoError(t, err)

	meta := Metadata(doc, "https://x.com/a/b")
	require.Equal(t, "https://x.com/canonical", meta.Canonical)
}

func TestContentRootPriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string // text content expected at the chosen root
	}{
		{"main wins", `<div class="content">c</div><main>m</main>`, "m"},
		{"article next", `<article>a</article><div id="content">c</div>`, "a"},
		{"id content", `<div id="content">c</div><div class="main">m</div>`, "c"},
		{"class content", `<div class="content">c</div>`, "c"},
		{"class main", `<div class="main">m</div>`, "m"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := ParseDocument("<html><body>" + tc.body + "</body></html>")
			require.NoError(t, err)
			root := ContentRoot(doc)
			require.NotNil(t, root)
			require.Equal(t, tc.want, textContent(root))
		})
	}
}

func TestContentRootFallsBackToBody(t *testing.T) {
	doc, err := ParseDocument(`<html><body><p>plain</p></body></html>`)
	require.NoError(t, err)
	root := ContentRoot(doc)
	require.NotNil(t, root)
	require.Equal(t, "body", root.Data)
}

func TestLinks(t *testing.T) {
	doc, err := ParseDocument(`<html><body>
<a href="/a">A</a>
<nav><a href="/b">B</a></nav>
<a href="https://other.com/c">C</a>
<a>no href</a>
</body></html>`)
	require.NoError(t, err)

	require.Equal(t, []string{"/a", "/b", "https://other.com/c"}, Links(doc))
}
