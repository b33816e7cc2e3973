package tui

import "github.com/Veraticus/gastos/internal/tui/themes"

// Config holds TUI configuration.
type Config struct {
	Theme  themes.Theme
	Title  string
	Width  int
	Height int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Title:  "Revisar gastos",
		Width:  100,
		Height: 24,
	}
}

// WithTheme sets a custom theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithTitle sets the header shown above the table, e.g. the source file.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
