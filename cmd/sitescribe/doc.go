// Command sitescribe crawls a website breadth-first and renders each page to
// Markdown with a full-page screenshot and a crawl index.
package main
