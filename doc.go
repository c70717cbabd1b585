// Package parterm provides a headless VT100/VT220/VT320/VT420/VT520-compatible
// terminal emulator core.
//
// This package emulates a terminal without any display, making it suitable
// for terminal multiplexers, recorders, web-based terminal backends, and
// automated testing of CLI tools.
//
// # Quick Start
//
//	term := parterm.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.String()) // "Hello World!"
//
// # Architecture
//
// Byte input flows Terminal.Write -> vte.Parser.Process -> vte.Dispatcher
// (implemented by Terminal) -> Grid/Cursor/mode mutation. The vte package
// holds the table-driven state machine and knows nothing about cells or
// colors; Terminal (this package) owns all terminal semantics.
//
//   - [Terminal]: the facade that processes escape sequences and owns state
//   - [Buffer]: a 2D grid of cells with scrollback support
//   - [Cell]: a single character cluster with colors and attributes
//   - [Cursor]: position, style, and visibility ([SavedCursor] holds the DECSC state)
//   - [ImageManager]: Sixel/Kitty/iTerm2 image and animation storage
//
// # Dual Buffers
//
// Terminal maintains a primary buffer (with scrollback) and an alternate
// buffer (used by full-screen apps, no scrollback), switched via CSI
// ?1049h/l.
//
// # Colors
//
// Colors use Go's [image/color] interface: named (0-15), indexed (0-255),
// and true color via [color.RGBA]. Use [ColorScheme.Resolve] to resolve any
// color against a scheme's palette and default colors.
//
// # Graphics
//
// Sixel (DCS q), Kitty graphics (APC G), and iTerm2 inline images (OSC 1337)
// all route through [ImageManager], which also tracks animation frame
// timing for Kitty animations built from frame (a=f) commands.
//
// # Shell Integration
//
// OSC 133 FinalTerm marks, OSC 7 working directory, OSC 8 hyperlinks, OSC 9
// notifications and progress, and OSC 52 clipboard are all handled by the
// shell-integration surface and exposed via [Terminal.PromptMarks] and
// related accessors.
//
// # Triggers
//
// A [trigger.Registry] can be attached to run regex actions against lines
// as they are written, for highlighting, variable capture, and automation.
//
// # Thread Safety
//
// Terminal accessors and state-changing methods take an internal lock.
// Write and WriteString run the escape-sequence parser without that lock,
// so they are not safe to call concurrently with each other. Callers
// needing multi-step atomicity should add their own synchronization around
// a batch of calls.
package parterm
