package tui

// Package-level constants to avoid magic numbers and improve readability.
const (
	// headerLines covers the title, offset line, progress bar and spacer above the grid.
	headerLines = 5
	// footerLines covers the spacer and key help below the grid.
	footerLines = 2
	// gridMinLines keeps the grid visible on tiny terminals.
	gridMinLines = 3
	// defaultGridLines is used until the first WindowSizeMsg arrives.
	defaultGridLines = 12
	// cellWidth is the rendered width of one grid cell, including padding.
	cellWidth = 8
	// gutterWidth is the width of the band marker column.
	gutterWidth = 2
	// progressMaxWidth caps the scroll position bar.
	progressMaxWidth = 60
)
