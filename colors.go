package parterm

import "image/color"

// DefaultPalette is the standard 256-color palette: 16 named colors (0-15), 216 color cube (16-231), 24 grayscale (232-255).
var DefaultPalette = [256]color.RGBA{
	// Standard colors (0-7)
	{0, 0, 0, 255},       // Black
	{205, 49, 49, 255},   // Red
	{13, 188, 121, 255},  // Green
	{229, 229, 16, 255},  // Yellow
	{36, 114, 200, 255},  // Blue
	{188, 63, 188, 255},  // Magenta
	{17, 168, 205, 255},  // Cyan
	{229, 229, 229, 255}, // White

	// Bright colors (8-15)
	{102, 102, 102, 255}, // Bright Black
	{241, 76, 76, 255},   // Bright Red
	{35, 209, 139, 255},  // Bright Green
	{245, 245, 67, 255},  // Bright Yellow
	{59, 142, 234, 255},  // Bright Blue
	{214, 112, 214, 255}, // Bright Magenta
	{41, 184, 219, 255},  // Bright Cyan
	{255, 255, 255, 255}, // Bright White

	// 216 colors (16-231)
	// Generated programmatically below

	// Grayscale (232-255)
	// Generated programmatically below
}

func init() {
	// Generate 216 color cube (16-231)
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				DefaultPalette[i] = color.RGBA{
					R: uint8(r * 51),
					G: uint8(g * 51),
					B: uint8(b * 51),
					A: 255,
				}
				i++
			}
		}
	}

	// Generate grayscale (232-255)
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		DefaultPalette[232+j] = color.RGBA{gray, gray, gray, 255}
	}
}

// DefaultForeground is the default text color (light gray).
var DefaultForeground = color.RGBA{229, 229, 229, 255}

// DefaultBackground is the default background color (black).
var DefaultBackground = color.RGBA{0, 0, 0, 255}

// DefaultCursorColor is the default cursor rendering color (light gray).
var DefaultCursorColor = color.RGBA{229, 229, 229, 255}

// Named color indices for semantic colors (used with NamedColor).
const (
	NamedColorForeground       = 256 // Default foreground text color
	NamedColorBackground       = 257 // Default background color
	NamedColorCursor           = 258 // Cursor color
	NamedColorDimBlack         = 259 // Dim black
	NamedColorDimRed           = 260 // Dim red
	NamedColorDimGreen         = 261 // Dim green
	NamedColorDimYellow        = 262 // Dim yellow
	NamedColorDimBlue          = 263 // Dim blue
	NamedColorDimMagenta       = 264 // Dim magenta
	NamedColorDimCyan          = 265 // Dim cyan
	NamedColorDimWhite         = 266 // Dim white
	NamedColorBrightForeground = 267 // Bright foreground (white)
	NamedColorDimForeground    = 268 // Dim foreground
)

// ColorScheme holds the per-Terminal color overrides that back the
// "set default/link/selection colors" family of OSC mutators, plus the two
// rendering knobs (dim-text alpha, SGR-bold brightening) that change how
// resolveDefaultColor/resolveNamedColor behave for that terminal. A
// zero-value ColorScheme is not usable; build one with NewColorScheme.
type ColorScheme struct {
	Foreground    color.RGBA
	Background    color.RGBA
	Cursor        color.RGBA
	LinkColor     color.RGBA
	HasLinkColor  bool
	SelectionFg   color.RGBA
	SelectionBg   color.RGBA
	HasSelection  bool
	FaintAlpha    float64 // multiplier applied to dim/faint colors, default 0.66
	BoldBrightens bool    // SGR bold on a 0-7 indexed color picks the 8-15 bright variant
}

// NewColorScheme returns a scheme seeded from the package-level defaults.
func NewColorScheme() *ColorScheme {
	return &ColorScheme{
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		Cursor:     DefaultCursorColor,
		FaintAlpha: 0.66,
	}
}

// Resolve converts a color.Color to RGBA using this scheme's overrides and
// the shared DefaultPalette. If c is nil, returns the scheme's default
// foreground or background depending on fg.
func (s *ColorScheme) Resolve(c color.Color, fg bool) color.RGBA {
	if c == nil {
		if fg {
			return s.Foreground
		}
		return s.Background
	}

	switch v := c.(type) {
	case color.RGBA:
		return v
	case *IndexedColor:
		if v.Index >= 0 && v.Index < 256 {
			return s.paletteColor(v.Index)
		}
		if fg {
			return s.Foreground
		}
		return s.Background
	case *NamedColor:
		return s.ResolveNamed(v.Name, fg)
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{
			R: uint8(r >> 8),
			G: uint8(g >> 8),
			B: uint8(b >> 8),
			A: uint8(a >> 8),
		}
	}
}

// paletteColor looks up a 0-255 index, brightening 0-7 to 8-15 when
// BoldBrightens is set.
func (s *ColorScheme) paletteColor(index int) color.RGBA {
	if s.BoldBrightens && index >= 0 && index < 8 {
		return DefaultPalette[index+8]
	}
	return DefaultPalette[index]
}

// ResolveNamed resolves a named color index to RGBA under this scheme.
func (s *ColorScheme) ResolveNamed(name int, fg bool) color.RGBA {
	switch {
	case name >= 0 && name < 16:
		return s.paletteColor(name)
	case name == NamedColorForeground:
		return s.Foreground
	case name == NamedColorBackground:
		return s.Background
	case name == NamedColorCursor:
		return s.Cursor
	case name >= NamedColorDimBlack && name <= NamedColorDimWhite:
		return s.dim(DefaultPalette[name-NamedColorDimBlack])
	case name == NamedColorBrightForeground:
		return DefaultPalette[15] // Bright White
	case name == NamedColorDimForeground:
		return s.dim(s.Foreground)
	default:
		if fg {
			return s.Foreground
		}
		return s.Background
	}
}

// dim scales an RGBA color by FaintAlpha, used for dim/faint SGR rendering.
func (s *ColorScheme) dim(base color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(base.R) * s.FaintAlpha),
		G: uint8(float64(base.G) * s.FaintAlpha),
		B: uint8(float64(base.B) * s.FaintAlpha),
		A: 255,
	}
}

// LinkColorOrDefault returns the configured link (OSC 8 hyperlink) color,
// falling back to the scheme's foreground when none was set via
// Terminal.SetLinkColor.
func (s *ColorScheme) LinkColorOrDefault() color.RGBA {
	if s.HasLinkColor {
		return s.LinkColor
	}
	return s.Foreground
}

// SelectionColorsOrDefault returns the configured selection fg/bg, falling
// back to a reverse-video-style swap of the scheme's foreground/background
// when Terminal.SetSelectionColors was never called.
func (s *ColorScheme) SelectionColorsOrDefault() (fg, bg color.RGBA) {
	if s.HasSelection {
		return s.SelectionFg, s.SelectionBg
	}
	return s.Background, s.Foreground
}

// defaultScheme backs the package-level resolveDefaultColor/resolveNamedColor
// helpers still used by callers that operate outside any particular
// Terminal (e.g. tests constructing bare cells).
var defaultScheme = NewColorScheme()

// resolveDefaultColor converts a color.Color to RGBA using the default
// palette and the package-wide default scheme. If c is nil, returns the
// default foreground or background based on fg. IndexedColor and NamedColor
// are resolved using DefaultPalette.
func resolveDefaultColor(c color.Color, fg bool) color.RGBA {
	return defaultScheme.Resolve(c, fg)
}

// resolveNamedColor resolves a named color index to RGBA using the
// package-wide default scheme.
func resolveNamedColor(name int, fg bool) color.RGBA {
	return defaultScheme.ResolveNamed(name, fg)
}
