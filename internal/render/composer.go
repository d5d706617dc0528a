package render

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

// ErrBackgroundNotFound is returned when the scene's background file is missing.
var ErrBackgroundNotFound = errors.New("background image not found")

// ComposerConfig holds configuration for avatar rendering
type ComposerConfig struct {
	AssetsDir  string
	OutputPath string
	FontFile   string
	Size       int
	TextColor  color.Color
}

// DefaultConfig returns the layout the avatar has always used: a 1024px square
// with 60% black text.
func DefaultConfig() *ComposerConfig {
	return &ComposerConfig{
		AssetsDir:  "assets",
		OutputPath: filepath.Join("assets", "upload.png"),
		FontFile:   filepath.Join("assets", "fonts", "PTSans-Bold.ttf"),
		Size:       1024,
		TextColor:  color.NRGBA{R: 0, G: 0, B: 0, A: 153},
	}
}

// Composer renders the avatar for a mode and writes it to OutputPath.
type Composer struct {
	config *ComposerConfig
	mode   Mode
	fonts  *fontCache
	logger *zap.Logger
}

// NewComposer creates a composer. A nil config uses DefaultConfig.
func NewComposer(config *ComposerConfig, mode Mode, logger *zap.Logger) *Composer {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		config: config,
		mode:   mode,
		fonts:  newFontCache(config.FontFile),
		logger: logger,
	}
}

// Render draws the scene for now and returns the path of the written PNG.
func (c *Composer) Render(now time.Time) (string, error) {
	scene := Plan(now, c.mode)
	c.logger.Info("Generating avatar",
		zap.String("mode", string(c.mode)),
		zap.String("background", scene.Background),
		zap.String("text", scene.Primary.Value))

	backgroundPath := filepath.Join(c.config.AssetsDir, filepath.FromSlash(scene.Background))
	background, err := gg.LoadImage(backgroundPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrBackgroundNotFound, backgroundPath)
		}
		return "", fmt.Errorf("failed to load background %s: %w", backgroundPath, err)
	}

	dc := gg.NewContext(c.config.Size, c.config.Size)
	dc.DrawImage(background, 0, 0)
	dc.SetColor(c.config.TextColor)

	var placed []placement
	for _, text := range []Text{scene.Primary, scene.Secondary} {
		if text.Value == "" {
			continue
		}
		face, err := c.fonts.face(text.Size)
		if err != nil {
			return "", err
		}
		dc.SetFontFace(face)
		width, _ := dc.MeasureString(text.Value)
		p := place(float64(c.config.Size), text, width, placed)
		dc.DrawString(p.text.Value, p.x, p.y)
		placed = append(placed, p)
	}

	if err := os.MkdirAll(filepath.Dir(c.config.OutputPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := dc.SavePNG(c.config.OutputPath); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", c.config.OutputPath, err)
	}

	c.logger.Info("Avatar generated", zap.String("path", c.config.OutputPath))
	return c.config.OutputPath, nil
}

// placement is the baseline origin of a drawn line
type placement struct {
	text Text
	x, y float64
}

// place centers text horizontally on a canvas of the given size. The first
// line sits half its size below the middle; each following line goes below the
// previous one by the previous size plus half its own.
func place(canvas float64, text Text, width float64, above []placement) placement {
	x := canvas/2 - width/2
	if len(above) == 0 {
		return placement{text: text, x: x, y: canvas/2 + text.Size/2}
	}
	prev := above[len(above)-1]
	return placement{text: text, x: x, y: prev.y + prev.text.Size + text.Size/2}
}
