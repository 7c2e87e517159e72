package render

import (
	"errors"
	"image/color"
	"image/draw"
	"time"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/mhansen/ingresslapse"
	"github.com/mhansen/ingresslapse/sim"
)

const (
	fieldOpacity = 0.35
	linkWidth    = 2.0
	portalRadius = 3.0
)

// Frame draws one snapshot onto img: fields as filled translucent
// triangles, links as colored lines, portals as small filled circles, and
// a displayTime overlay in the corner if a font has been loaded with
// LoadFont. img's bounds determine the output pixel size; resize the
// result afterward with Resize if a different output size is needed.
func Frame(img draw.Image, snapshot sim.StateSnapshot, displayTime time.Time, view View) error {
	if img.Bounds().Empty() {
		return errors.New("render.Frame: image cannot be empty")
	}

	byID := make(map[ingresslapse.PortalID]sim.PortalState, len(snapshot.Portals))
	for _, p := range snapshot.Portals {
		byID[p.ID] = p
	}

	gc := draw2dimg.NewGraphicContext(img)

	for _, f := range snapshot.Fields {
		drawField(gc, view, byID, f)
	}
	for _, l := range snapshot.Links {
		drawLink(gc, view, byID, l)
	}
	for _, p := range snapshot.Portals {
		drawPortal(gc, view, p)
	}

	drawTimestamp(img, displayTime)

	return nil
}

func drawField(gc *draw2dimg.GraphicContext, view View, byID map[ingresslapse.PortalID]sim.PortalState, f sim.FieldState) {
	p1, ok1 := byID[f.P1]
	p2, ok2 := byID[f.P2]
	p3, ok3 := byID[f.P3]
	if !ok1 || !ok2 || !ok3 {
		return
	}

	fc := FactionDrawColors[f.Team]
	fc.A = uint8(255 * fieldOpacity)
	gc.SetFillColor(fc)
	gc.SetStrokeColor(color.Transparent)

	x1, y1 := view.project(p1.Lat, p1.Lng)
	x2, y2 := view.project(p2.Lat, p2.Lng)
	x3, y3 := view.project(p3.Lat, p3.Lng)

	gc.BeginPath()
	gc.MoveTo(x1, y1)
	gc.LineTo(x2, y2)
	gc.LineTo(x3, y3)
	gc.Close()
	gc.FillStroke()
}

func drawLink(gc *draw2dimg.GraphicContext, view View, byID map[ingresslapse.PortalID]sim.PortalState, l sim.LinkState) {
	pa, okA := byID[l.A]
	pb, okB := byID[l.B]
	if !okA || !okB {
		return
	}
	gc.SetStrokeColor(FactionDrawColors[pa.Team])
	gc.SetLineWidth(linkWidth)
	gc.BeginPath()
	x1, y1 := view.project(pa.Lat, pa.Lng)
	x2, y2 := view.project(pb.Lat, pb.Lng)
	gc.MoveTo(x1, y1)
	gc.LineTo(x2, y2)
	gc.Stroke()
}

func drawPortal(gc *draw2dimg.GraphicContext, view View, p sim.PortalState) {
	gc.SetFillColor(FactionDrawColors[p.Team])
	gc.SetStrokeColor(color.White)
	gc.SetLineWidth(1)
	x, y := view.project(p.Lat, p.Lng)
	gc.BeginPath()
	gc.ArcTo(x, y, portalRadius, portalRadius, 0, 2*3.141592653589793)
	gc.Close()
	gc.FillStroke()
}
