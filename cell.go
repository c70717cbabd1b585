package parterm

import "image/color"

// CellFlags is a bitmask of cell rendering attributes.
type CellFlags uint16

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagUnderline
	CellFlagDoubleUnderline
	CellFlagCurlyUnderline
	CellFlagDottedUnderline
	CellFlagDashedUnderline
	CellFlagBlinkSlow
	CellFlagBlinkFast
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagWideChar
	CellFlagWideCharSpacer
	CellFlagDirty
	CellFlagHighlighted
)

// Cell stores the character, colors, and formatting attributes for one grid position.
// Wide characters (2 columns) use a spacer cell in the second position.
type Cell struct {
	Char           rune
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	Hyperlink      *Hyperlink
	Image          *CellImage // Image reference, nil if no image

	// HighlightBg overrides Bg for rendering while CellFlagHighlighted is set.
	// Set by trigger match highlighting (trigger.ActionHighlight, applied by
	// the session); never
	// written by the parser itself.
	HighlightBg color.Color
	// highlightExpiry is a monotonic deadline (nanoseconds since epoch) after
	// which the highlight is no longer considered active. Zero means no
	// expiry was requested and the highlight persists until explicitly
	// cleared.
	highlightExpiry int64
}

// Hyperlink associates a cell with a clickable link (OSC 8).
type Hyperlink struct {
	ID  string
	URI string
}

// NewCell creates a cell initialized with space character and default colors.
func NewCell() Cell {
	return Cell{
		Char: ' ',
		Fg:   &NamedColor{Name: NamedColorForeground},
		Bg:   &NamedColor{Name: NamedColorBackground},
	}
}

// Reset clears all attributes and sets the cell to default state (space character, default colors).
func (c *Cell) Reset() {
	c.Char = ' '
	c.Fg = &NamedColor{Name: NamedColorForeground}
	c.Bg = &NamedColor{Name: NamedColorBackground}
	c.UnderlineColor = nil
	c.Flags = 0
	c.Hyperlink = nil
	c.Image = nil
	c.HighlightBg = nil
	c.highlightExpiry = 0
}

// HasFlag returns true if the specified flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag != 0
}

// SetFlag enables the specified flag without affecting others.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag disables the specified flag without affecting others.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsDirty returns true if the cell was modified since the last ClearDirty call.
func (c *Cell) IsDirty() bool {
	return c.HasFlag(CellFlagDirty)
}

// MarkDirty marks the cell as modified for dirty tracking.
func (c *Cell) MarkDirty() {
	c.SetFlag(CellFlagDirty)
}

// ClearDirty resets the dirty tracking flag.
func (c *Cell) ClearDirty() {
	c.ClearFlag(CellFlagDirty)
}

// IsWide returns true if this cell contains a wide character (CJK, emoji, etc.) that occupies 2 columns.
func (c *Cell) IsWide() bool {
	return c.HasFlag(CellFlagWideChar)
}

// IsWideSpacer returns true if this is the second cell of a wide character (should be skipped during rendering).
func (c *Cell) IsWideSpacer() bool {
	return c.HasFlag(CellFlagWideCharSpacer)
}

// Copy returns a deep copy of the cell, including the hyperlink and image pointers.
func (c *Cell) Copy() Cell {
	return Cell{
		Char:           c.Char,
		Fg:             c.Fg,
		Bg:             c.Bg,
		UnderlineColor: c.UnderlineColor,
		Flags:          c.Flags,
		Hyperlink:      c.Hyperlink,
		Image:          c.Image,
		HighlightBg:    c.HighlightBg,
		highlightExpiry: c.highlightExpiry,
	}
}

// HasImage returns true if this cell has an image reference.
func (c *Cell) HasImage() bool {
	return c.Image != nil
}

// SetHighlight marks the cell as highlighted with bg as the override
// background color. expiryUnixNano is a deadline for IsHighlightExpired to
// compare against; pass 0 for a highlight that never expires on its own.
func (c *Cell) SetHighlight(bg color.Color, expiryUnixNano int64) {
	c.HighlightBg = bg
	c.highlightExpiry = expiryUnixNano
	c.SetFlag(CellFlagHighlighted)
}

// ClearHighlight removes a trigger-applied highlight overlay from the cell.
func (c *Cell) ClearHighlight() {
	c.HighlightBg = nil
	c.highlightExpiry = 0
	c.ClearFlag(CellFlagHighlighted)
}

// IsHighlighted returns true if a trigger highlight overlay is active.
func (c *Cell) IsHighlighted() bool {
	return c.HasFlag(CellFlagHighlighted)
}

// IsHighlightExpired reports whether the cell carries an expiry and nowUnixNano
// is past it. A zero expiry never expires.
func (c *Cell) IsHighlightExpired(nowUnixNano int64) bool {
	return c.highlightExpiry != 0 && nowUnixNano >= c.highlightExpiry
}

// EffectiveBg returns HighlightBg while the highlight is active, otherwise Bg.
func (c *Cell) EffectiveBg() color.Color {
	if c.IsHighlighted() {
		return c.HighlightBg
	}
	return c.Bg
}
