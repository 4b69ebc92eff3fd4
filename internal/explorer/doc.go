// Package explorer serves a small browser page for walking the
// administrative hierarchy through the HTTP API.
//
// The page is embedded into the binary with go:embed. Handler serves it with
// SPA fallback: unknown paths return index.html so deep links such as
// /explorer/kigali/kicukiro load the page, which reads the path itself.
package explorer
