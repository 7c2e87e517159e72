package render

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/mhansen/ingresslapse"
	"github.com/mhansen/ingresslapse/sim"
)

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{.Width}} {{.Height}}">
<style>
.RES {
	fill: #004b8059;
	stroke: #004b80ff;
}
.ENL {
	fill: #448e2b59;
	stroke: #448e2bff;
}
.NEUTRAL {
	fill: #80808059;
	stroke: #808080ff;
}
.MACHINA {
	fill: #9e0b0f59;
	stroke: #9e0b0fff;
}
polygon {
	stroke-width: 2px;
}
line {
	stroke-width: 2px;
}
circle {
	stroke: white;
	stroke-width: 1px;
}
</style>
{{if .Caption}}<text x="6" y="{{.Height}}" fill="white" font-size="14">{{.Caption}}</text>{{end}}
{{range .Fields}}<polygon points="{{.Points}}" class="{{.Faction}}"/>
{{end}}{{range .Links}}<line x1="{{.X1}}" y1="{{.Y1}}" x2="{{.X2}}" y2="{{.Y2}}" class="{{.Faction}}"/>
{{end}}{{range .Portals}}<circle cx="{{.X}}" cy="{{.Y}}" r="4" class="{{.Faction}}"/>
{{end}}</svg>`

var svgTmpl = template.Must(template.New("frame").Parse(svgTemplate))

// Svg renders snapshot as an SVG document, an alternate to the raster Frame
// path for callers that want a scalable or diffable frame format.
func Svg(snapshot sim.StateSnapshot, view View, displayTime time.Time) io.WriterTo {
	byID := make(map[ingresslapse.PortalID]sim.PortalState, len(snapshot.Portals))
	for _, p := range snapshot.Portals {
		byID[p.ID] = p
	}

	doc := svgDoc{
		Width:   view.Width,
		Height:  view.Height,
		Caption: displayTime.UTC().Format(timeFmt),
	}

	for _, f := range snapshot.Fields {
		p1, ok1 := byID[f.P1]
		p2, ok2 := byID[f.P2]
		p3, ok3 := byID[f.P3]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		x1, y1 := view.project(p1.Lat, p1.Lng)
		x2, y2 := view.project(p2.Lat, p2.Lng)
		x3, y3 := view.project(p3.Lat, p3.Lng)
		doc.Fields = append(doc.Fields, svgField{
			Points:  fmt.Sprintf("%g,%g %g,%g %g,%g", x1, y1, x2, y2, x3, y3),
			Faction: f.Team.String(),
		})
	}

	for _, l := range snapshot.Links {
		pa, okA := byID[l.A]
		pb, okB := byID[l.B]
		if !okA || !okB {
			continue
		}
		x1, y1 := view.project(pa.Lat, pa.Lng)
		x2, y2 := view.project(pb.Lat, pb.Lng)
		doc.Links = append(doc.Links, svgLink{X1: x1, Y1: y1, X2: x2, Y2: y2, Faction: pa.Team.String()})
	}

	for _, p := range snapshot.Portals {
		x, y := view.project(p.Lat, p.Lng)
		doc.Portals = append(doc.Portals, svgPortal{X: x, Y: y, Faction: p.Team.String()})
	}

	return doc
}

type svgDoc struct {
	Width, Height int
	Caption       string
	Fields        []svgField
	Links         []svgLink
	Portals       []svgPortal
}

type svgField struct {
	Points  string
	Faction string
}

type svgLink struct {
	X1, Y1, X2, Y2 float64
	Faction        string
}

type svgPortal struct {
	X, Y    float64
	Faction string
}

func (doc svgDoc) WriteTo(w io.Writer) (int64, error) {
	counter := &countingWriter{w: w}
	err := svgTmpl.Execute(counter, doc)
	return int64(counter.n), err
}

type countingWriter struct {
	n int
	w io.Writer
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
