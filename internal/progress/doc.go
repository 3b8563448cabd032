// Package progress defines the event stream emitted by the crawl loop and the
// hub that fans events out to sinks without ever blocking the crawl.
package progress
