package gifenc

import (
	"bytes"
	"errors"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/rogue-gym/internal/config"
	"github.com/vovakirdan/rogue-gym/internal/core"
	"github.com/vovakirdan/rogue-gym/internal/env"
)

func recordHistory(t *testing.T, keys string) []byte {
	t.Helper()
	e, err := env.New(config.Default().WithSeed(11), env.Options{})
	if err != nil {
		t.Fatalf("env.New() failed: %v", err)
	}
	if _, err := e.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Step(core.Macro(keys)); err != nil {
		t.Fatal(err)
	}
	data, err := e.History()
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestWriteFileFrameCount(t *testing.T) {
	data := recordHistory(t, "hjkl.s..")

	tests := []struct {
		name       string
		maxActions int
		want       int
	}{
		{"whole history", -1, 9},
		{"capped", 3, 4},
		{"default cap above length", 0, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "episode.gif")
			n, err := WriteFile(path, data, Options{MaxActions: tt.maxActions, Interval: 100 * time.Millisecond})
			if err != nil {
				t.Fatalf("WriteFile() failed: %v", err)
			}
			if n != tt.want {
				t.Errorf("WriteFile() frames = %d, expected %d", n, tt.want)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			g, err := gif.DecodeAll(f)
			if err != nil {
				t.Fatalf("written file is not a GIF: %v", err)
			}
			if len(g.Image) != tt.want {
				t.Errorf("decoded %d frames, expected %d", len(g.Image), tt.want)
			}
			if g.Delay[0] != 10 {
				t.Errorf("frame delay = %d, expected 10", g.Delay[0])
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	data := recordHistory(t, "lllljj")
	states, err := Frames(data, -1)
	if err != nil {
		t.Fatal(err)
	}
	var a, b bytes.Buffer
	if err := Encode(&a, states, Options{}); err != nil {
		t.Fatal(err)
	}
	if err := Encode(&b, states, Options{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("encoding the same frames twice produced different output")
	}
}

func TestEncodeNoFrames(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, nil, Options{}); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("Encode(nil) error = %v", err)
	}
}

func TestParseTheme(t *testing.T) {
	for _, name := range []string{"", "white", "black", "solarized_light", "Solarized-Dark"} {
		if _, err := ParseTheme(name); err != nil {
			t.Errorf("ParseTheme(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseTheme("neon"); !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Errorf("unknown theme error = %v", err)
	}
}
