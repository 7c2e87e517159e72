// Package render draws a sim.StateSnapshot onto an image as one frame of a
// territorial timelapse.
package render

import (
	"image/color"

	"github.com/mhansen/ingresslapse"
)

// View carries the map-to-pixel projection the renderer needs: a center
// coordinate, a zoom factor (pixels per degree), and the output pixel
// dimensions. Building a View from an interactive map widget is out of
// scope here; View is the minimal struct a caller assembles to drive Frame.
type View struct {
	CenterLat, CenterLng float64
	PixelsPerDegree       float64
	Width, Height         int
}

// project converts a lat/lng coordinate to pixel coordinates within the
// view, with (0,0) at the image's top-left corner.
func (v View) project(lat, lng float64) (x, y float64) {
	x = float64(v.Width)/2 + (lng-v.CenterLng)*v.PixelsPerDegree
	y = float64(v.Height)/2 - (lat-v.CenterLat)*v.PixelsPerDegree
	return x, y
}

// FactionDrawColors are the base fill/stroke colors keyed by faction,
// adapted from the teacher's FactionDrawColors palette (there keyed by
// VS/NC/TR/NSO) to this domain's RES/ENL/NEUTRAL/MACHINA.
var FactionDrawColors = map[ingresslapse.Faction]color.RGBA{
	ingresslapse.Neutral:     {0x80, 0x80, 0x80, 0xff},
	ingresslapse.Resistance:  {0x00, 0x4b, 0x80, 0xff},
	ingresslapse.Enlightened: {0x44, 0x8e, 0x2b, 0xff},
	ingresslapse.Machina:     {0x9e, 0x0b, 0x0f, 0xff},
}
