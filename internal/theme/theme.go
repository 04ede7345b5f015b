// Package theme maps terminal colors to concrete RGB values.
//
// A theme names the default foreground/background, the cursor color and the
// 16 ANSI colors; the remaining 240 entries of the palette are the fixed
// xterm color cube and grayscale ramp. Themes come from built-ins or from
// YAML files.
package theme

import (
	"fmt"
	"image/color"
	"os"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Theme describes the configurable colors of a rendering run.
type Theme struct {
	Name       string
	Foreground color.NRGBA
	Background color.NRGBA
	Cursor     color.NRGBA
	ANSI       [16]color.NRGBA
}

// themeFile is the YAML shape of a theme file.
type themeFile struct {
	Name       string   `yaml:"name"`
	Foreground string   `yaml:"foreground"`
	Background string   `yaml:"background"`
	Cursor     string   `yaml:"cursor,omitempty"`
	Palette    []string `yaml:"palette"`
}

// Load resolves a theme by built-in name or, failing that, by reading a
// YAML theme file at the given path.
func Load(nameOrPath string) (*Theme, error) {
	if t, ok := builtins[nameOrPath]; ok {
		return t.clone(), nil
	}
	if _, err := os.Stat(nameOrPath); err != nil {
		return nil, fmt.Errorf("unknown theme %q (built-ins: %v)", nameOrPath, BuiltinNames())
	}
	return LoadFile(nameOrPath)
}

// LoadFile reads a YAML theme file.
func LoadFile(path string) (*Theme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}
	var tf themeFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}
	t, err := fromFile(&tf)
	if err != nil {
		return nil, fmt.Errorf("invalid theme file %s: %w", path, err)
	}
	if t.Name == "" {
		t.Name = path
	}
	return t, nil
}

func fromFile(tf *themeFile) (*Theme, error) {
	if len(tf.Palette) != 8 && len(tf.Palette) != 16 {
		return nil, fmt.Errorf("palette has %d colors, want 8 or 16", len(tf.Palette))
	}

	t := &Theme{Name: tf.Name}
	var err error
	if t.Foreground, err = parseHex(tf.Foreground); err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	if t.Background, err = parseHex(tf.Background); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if tf.Cursor != "" {
		if t.Cursor, err = parseHex(tf.Cursor); err != nil {
			return nil, fmt.Errorf("cursor: %w", err)
		}
	} else {
		t.Cursor = t.Foreground
	}

	for i, hex := range tf.Palette {
		if t.ANSI[i], err = parseHex(hex); err != nil {
			return nil, fmt.Errorf("palette[%d]: %w", i, err)
		}
	}
	// An 8-color palette gets its bright half derived by lightening.
	if len(tf.Palette) == 8 {
		for i := 0; i < 8; i++ {
			t.ANSI[i+8] = lighten(t.ANSI[i], 0.2)
		}
	}
	return t, nil
}

func (t *Theme) clone() *Theme {
	c := *t
	return &c
}

// parseHex parses a "#rrggbb" color.
func parseHex(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// lighten raises a color's HSL lightness by the given amount, clamped to 1.
func lighten(c color.NRGBA, amount float64) color.NRGBA {
	h, s, l := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsl()
	l += amount
	if l > 1 {
		l = 1
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// BuiltinNames lists the built-in theme names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a built-in theme by name.
func Builtin(name string) (*Theme, bool) {
	t, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return t.clone(), true
}

// DefaultName is the theme used when none is configured.
const DefaultName = "asciinema"

func hex(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

var builtins = map[string]*Theme{
	"asciinema": {
		Name:       "asciinema",
		Foreground: hex(0xcccccc),
		Background: hex(0x121314),
		Cursor:     hex(0xcccccc),
		ANSI: [16]color.NRGBA{
			hex(0x000000), hex(0xdd3c69), hex(0x4ebf22), hex(0xddaf3c),
			hex(0x26b0d7), hex(0xb954e1), hex(0x54e1b9), hex(0xd9d9d9),
			hex(0x4d4d4d), hex(0xdd3c69), hex(0x4ebf22), hex(0xddaf3c),
			hex(0x26b0d7), hex(0xb954e1), hex(0x54e1b9), hex(0xffffff),
		},
	},
	"base16": {
		Name:       "base16",
		Foreground: hex(0xd8d8d8),
		Background: hex(0x181818),
		Cursor:     hex(0xd8d8d8),
		ANSI: [16]color.NRGBA{
			hex(0x181818), hex(0xab4642), hex(0xa1b56c), hex(0xf7ca88),
			hex(0x7cafc2), hex(0xba8baf), hex(0x86c1b9), hex(0xd8d8d8),
			hex(0x585858), hex(0xab4642), hex(0xa1b56c), hex(0xf7ca88),
			hex(0x7cafc2), hex(0xba8baf), hex(0x86c1b9), hex(0xf8f8f8),
		},
	},
	"dracula": {
		Name:       "dracula",
		Foreground: hex(0xf8f8f2),
		Background: hex(0x282a36),
		Cursor:     hex(0xf8f8f2),
		ANSI: [16]color.NRGBA{
			hex(0x21222c), hex(0xff5555), hex(0x50fa7b), hex(0xf1fa8c),
			hex(0xbd93f9), hex(0xff79c6), hex(0x8be9fd), hex(0xf8f8f2),
			hex(0x6272a4), hex(0xff6e6e), hex(0x69ff94), hex(0xffffa5),
			hex(0xd6acff), hex(0xff92df), hex(0xa4ffff), hex(0xffffff),
		},
	},
	"monokai": {
		Name:       "monokai",
		Foreground: hex(0xf8f8f2),
		Background: hex(0x272822),
		Cursor:     hex(0xf8f8f2),
		ANSI: [16]color.NRGBA{
			hex(0x272822), hex(0xf92672), hex(0xa6e22e), hex(0xf4bf75),
			hex(0x66d9ef), hex(0xae81ff), hex(0xa1efe4), hex(0xf8f8f2),
			hex(0x75715e), hex(0xf92672), hex(0xa6e22e), hex(0xf4bf75),
			hex(0x66d9ef), hex(0xae81ff), hex(0xa1efe4), hex(0xf9f8f5),
		},
	},
}
