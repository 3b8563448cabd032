// Package api exposes the HTTP status interface for a crawl run.
package api
