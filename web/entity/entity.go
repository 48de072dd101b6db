// Package entity defines data structures shared by the web layer.
package entity

// Flash categories shown on the next rendered page after a redirect.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-time user-visible status message. It is gob-encoded into
// the session cookie and consumed on the next render.
type Flash struct {
	Category string
	Message  string
}
