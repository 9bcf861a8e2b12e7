package config

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme holds the console colors as hex strings.
type Theme struct {
	// Banner colors greeting and informational output.
	Banner string `toml:"banner" yaml:"banner"`

	// Prompt colors the input prompt.
	Prompt string `toml:"prompt" yaml:"prompt"`

	// Error colors host error output.
	Error string `toml:"error" yaml:"error"`

	// Progress colors the progress readout.
	Progress string `toml:"progress" yaml:"progress"`
}

// Palette is a parsed Theme.
type Palette struct {
	Banner   colorful.Color
	Prompt   colorful.Color
	Error    colorful.Color
	Progress colorful.Color
}

func defaultTheme() Theme {
	return Theme{
		Banner:   "#8be9fd",
		Prompt:   "#50fa7b",
		Error:    "#ff5555",
		Progress: "#f1fa8c",
	}
}

// Palette parses every theme entry. Entries must be hex colors in the
// #rrggbb form.
func (t Theme) Palette() (Palette, error) {
	var p Palette
	for _, entry := range []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{
		{"banner", t.Banner, &p.Banner},
		{"prompt", t.Prompt, &p.Prompt},
		{"error", t.Error, &p.Error},
		{"progress", t.Progress, &p.Progress},
	} {
		c, err := colorful.Hex(entry.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("theme %s %q: %w", entry.name, entry.hex, ErrInvalidColor)
		}
		*entry.dst = c
	}
	return p, nil
}
