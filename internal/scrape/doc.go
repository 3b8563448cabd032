// Package scrape implements the breadth-first site crawl that turns rendered
// pages into Markdown documents. It owns the frontier, the per-page pipeline,
// and the end-of-run index and metadata reports. Rendering, artifact
// persistence, and optional stores are collaborators defined by narrow
// interfaces so the crawl core stays testable without a browser.
package scrape
