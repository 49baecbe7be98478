package dockstream

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the
// front-end automatically matches any color scheme.
type Theme struct {
	UserMsg   int // User message accent
	Assistant int // Assistant message text
	Error     int // Error banner
	Success   int // Completion indicators
	Muted     int // Status bar, placeholders
	Accent    int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		Assistant: -1,
		Error:     1,
		Success:   2,
		Muted:     8,
		Accent:    5,
	}
}
