package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
)

const timestampPointSize = 14

var (
	fontMu  sync.Mutex
	loaded  *truetype.Font
	timeFmt = "2006-01-02 15:04:05 MST"
)

// LoadFont parses TTF font data and stores it for subsequent Frame calls to
// use when drawing the timestamp overlay. Frame draws no timestamp text
// until a font has been loaded.
func LoadFont(data []byte) error {
	f, err := freetype.ParseFont(data)
	if err != nil {
		return fmt.Errorf("render.LoadFont: %w", err)
	}
	fontMu.Lock()
	loaded = f
	fontMu.Unlock()
	return nil
}

// drawTimestamp overlays displayTime in the bottom-left corner of img using
// the font loaded via LoadFont. It is a no-op if no font has been loaded.
func drawTimestamp(img draw.Image, displayTime time.Time) {
	fontMu.Lock()
	f := loaded
	fontMu.Unlock()
	if f == nil {
		return
	}

	bounds := img.Bounds()

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(timestampPointSize)
	c.SetClip(bounds)
	c.SetDst(img)
	c.SetSrc(image.NewUniform(color.White))

	pt := freetype.Pt(bounds.Min.X+6, bounds.Max.Y-6)
	_, _ = c.DrawString(displayTime.UTC().Format(timeFmt), pt)
}
