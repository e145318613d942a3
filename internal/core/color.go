package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// TileColor returns the display color for a dungeon tile byte.
func TileColor(b byte) Color {
	switch {
	case b == '@':
		return ColorBrightYellow
	case b == '*':
		return ColorYellow
	case b == '%':
		return ColorBrightGreen
	case b == '+':
		return ColorOrange
	case b == '#':
		return ColorGray
	case b == '-' || b == '|':
		return ColorBlue
	case b == ':':
		return ColorGreen
	case b == '^':
		return ColorMagenta
	case b >= 'A' && b <= 'Z':
		return ColorBrightRed
	default:
		return ColorDefault
	}
}
