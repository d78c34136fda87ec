package tui

// Message types for Bubble Tea update loop.

// refreshMsg signals that membership results or the committed offset changed,
// possibly from a trailing-edge timer outside the update loop.
type refreshMsg struct{}
