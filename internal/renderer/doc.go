// Package renderer provides page rendering engines: a headless Chrome engine
// driven by chromedp and a plain HTTP engine built on Colly for sites that do
// not need JavaScript.
package renderer
