package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// fontDPI makes point sizes match CSS pixels on the canvas: 150pt is 200px.
const fontDPI = 96

// fontCache parses the TTF once and keeps one face per point size.
type fontCache struct {
	path  string
	font  *truetype.Font
	faces map[float64]font.Face
}

func newFontCache(path string) *fontCache {
	return &fontCache{path: path, faces: make(map[float64]font.Face)}
}

// face returns a face for size, loading the font on first use. A missing font
// file falls back to the embedded Go Bold.
func (fc *fontCache) face(size float64) (font.Face, error) {
	if f, ok := fc.faces[size]; ok {
		return f, nil
	}

	if fc.font == nil {
		parsed, err := loadFont(fc.path)
		if err != nil {
			return nil, err
		}
		fc.font = parsed
	}

	f := truetype.NewFace(fc.font, &truetype.Options{Size: size, DPI: fontDPI, Hinting: font.HintingFull})
	fc.faces[size] = f
	return f, nil
}

func loadFont(path string) (*truetype.Font, error) {
	data := gobold.TTF
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			data = raw
		case errors.Is(err, fs.ErrNotExist):
			// fall back to gobold
		default:
			return nil, fmt.Errorf("failed to read font %s: %w", path, err)
		}
	}

	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return parsed, nil
}
