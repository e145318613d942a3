// Package gifenc renders replayed episodes as animated GIFs, one frame
// per consumed keystroke.
package gifenc

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/engine"
	"github.com/vovakirdan/rogue-gym/internal/games/rogue"
)

const (
	DefaultInterval   = 50 * time.Millisecond
	DefaultMaxActions = 30
)

// Theme is a background and default glyph colour pair.
type Theme struct {
	Back color.RGBA
	Font color.RGBA
}

var themes = map[string]Theme{
	"white":           {Back: rgb(255, 255, 255), Font: rgb(0, 0, 0)},
	"black":           {Back: rgb(0, 0, 0), Font: rgb(255, 255, 255)},
	"solarized-light": {Back: rgb(253, 246, 227), Font: rgb(88, 110, 117)},
	"solarized-dark":  {Back: rgb(0, 43, 54), Font: rgb(147, 161, 161)},
}

// ParseTheme looks up a theme by name. Underscores are accepted in place
// of dashes.
func ParseTheme(name string) (Theme, error) {
	if name == "" {
		return themes["solarized-dark"], nil
	}
	t, ok := themes[strings.ReplaceAll(strings.ToLower(name), "_", "-")]
	if !ok {
		return Theme{}, fmt.Errorf("%w: unknown theme %q (want white, black, solarized-light or solarized-dark)",
			core.ErrInvalidConfiguration, name)
	}
	return t, nil
}

// Options controls frame timing and look.
type Options struct {
	Interval time.Duration
	// MaxActions caps the replayed keystrokes; 0 means DefaultMaxActions,
	// negative means the whole history.
	MaxActions int
	Theme      Theme
	// Mono draws every glyph in the theme colour.
	Mono bool
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxActions == 0 {
		o.MaxActions = DefaultMaxActions
	}
	if o.Theme == (Theme{}) {
		o.Theme = themes["solarized-dark"]
	}
	return o
}

// Frames replays a history and returns the starting state followed by
// the state after each replayed keystroke.
func Frames(history []byte, maxActions int) ([]*engine.PlayerState, error) {
	h, err := rogue.ParseHistory(history)
	if err != nil {
		return nil, err
	}
	g, err := h.NewGame()
	if err != nil {
		return nil, err
	}
	keys := h.Keys
	if maxActions >= 0 && len(keys) > maxActions {
		keys = keys[:maxActions]
	}
	frames := []*engine.PlayerState{g.PreviousResult()}
	for i := 0; i < len(keys); i++ {
		if _, err := g.React(keys[i]); err != nil {
			return nil, fmt.Errorf("gifenc: replay key %d: %w", i, err)
		}
		frames = append(frames, g.PreviousResult())
	}
	return frames, nil
}

// Encode writes states as an animated GIF.
func Encode(w io.Writer, states []*engine.PlayerState, opts Options) error {
	if len(states) == 0 {
		return fmt.Errorf("%w: no frames to encode", core.ErrInvalidConfiguration)
	}
	opts = opts.withDefaults()

	cols, rows := 0, 0
	for _, st := range states {
		cols = core.Max(cols, textWidth(st))
		rows = core.Max(rows, len(st.Dungeon)+1)
	}
	face := basicfont.Face7x13
	cellW, cellH := face.Advance, face.Height
	bounds := image.Rect(0, 0, cols*cellW, rows*cellH)
	pal := palette(opts.Theme)
	delay := int(opts.Interval / (10 * time.Millisecond))

	anim := &gif.GIF{}
	for _, st := range states {
		img := image.NewPaletted(bounds, pal)
		// Index 0 is the background.
		d := &font.Drawer{Dst: img, Face: face}
		for y, row := range st.Dungeon {
			for x := 0; x < len(row); x++ {
				if row[x] == ' ' {
					continue
				}
				d.Src = image.NewUniform(glyphColor(row[x], opts))
				d.Dot = fixed.P(x*cellW, y*cellH+face.Ascent)
				d.DrawString(string(row[x]))
			}
		}
		d.Src = image.NewUniform(opts.Theme.Font)
		d.Dot = fixed.P(0, len(st.Dungeon)*cellH+face.Ascent)
		d.DrawString(st.Status.String())

		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	return gif.EncodeAll(w, anim)
}

// WriteFile replays history into a GIF at path and returns the number of
// frames written.
func WriteFile(path string, history []byte, opts Options) (int, error) {
	opts = opts.withDefaults()
	states, err := Frames(history, opts.MaxActions)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("gifenc: cannot create %s: %w", path, err)
	}
	if err := Encode(f, states, opts); err != nil {
		f.Close()
		return 0, err
	}
	return len(states), f.Close()
}

func textWidth(st *engine.PlayerState) int {
	w := len(st.Status.String())
	for _, row := range st.Dungeon {
		w = core.Max(w, len(row))
	}
	return w
}

func glyphColor(b byte, opts Options) color.RGBA {
	if opts.Mono {
		return opts.Theme.Font
	}
	tag := core.TileColor(b)
	for _, c := range tileColors {
		if c.tag == tag {
			return c.rgb
		}
	}
	return opts.Theme.Font
}

type tileColor struct {
	tag core.Color
	rgb color.RGBA
}

var tileColors = []tileColor{
	{core.ColorYellow, rgb(181, 137, 0)},
	{core.ColorBrightYellow, rgb(255, 215, 0)},
	{core.ColorBrightGreen, rgb(133, 153, 0)},
	{core.ColorGreen, rgb(42, 161, 152)},
	{core.ColorOrange, rgb(203, 75, 22)},
	{core.ColorGray, rgb(128, 128, 128)},
	{core.ColorBlue, rgb(38, 139, 210)},
	{core.ColorMagenta, rgb(211, 54, 130)},
	{core.ColorBrightRed, rgb(220, 50, 47)},
}

func palette(t Theme) color.Palette {
	p := color.Palette{t.Back, t.Font}
	for _, c := range tileColors {
		p = append(p, c.rgb)
	}
	return p
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }
