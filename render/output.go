package render

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/anthonynsimon/bild/transform"
	"github.com/google/uuid"
	"golang.org/x/image/bmp"
)

// Session tags one replay run's output frames with a stable identifier plus
// a per-frame monotonically increasing sequence number, matching the
// teacher's per-request uuid tagging in cmd/mapgen.
type Session struct {
	ID    uuid.UUID
	frame int
}

// NewSession starts a fresh render session.
func NewSession() *Session {
	return &Session{ID: uuid.New()}
}

// NextFrameName returns the filename for the next frame in the session and
// advances its internal counter.
func (s *Session) NextFrameName(ext string) string {
	name := fmt.Sprintf("%s-%06d.%s", s.ID.String(), s.frame, ext)
	s.frame++
	return name
}

// Resize scales img to the given pixel dimensions, mirroring cmd/mapgen's
// use of bild/transform to fit a rendered canvas to a requested output
// size.
func Resize(img image.Image, width, height int) *image.RGBA {
	return transform.Resize(img, width, height, transform.Linear)
}

// EncodePNG writes img as PNG, the default frame output codec.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// EncodeBMP writes img as an uncompressed BMP, an alternate codec path for
// callers piping frames into an external lossless-friendly encoder rather
// than reading compressed PNGs.
func EncodeBMP(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}
