package render

import "testing"

func TestProjectCentersOnView(t *testing.T) {
	v := View{CenterLat: 10, CenterLng: 20, PixelsPerDegree: 100, Width: 400, Height: 400}
	x, y := v.project(10, 20)
	if x != 200 || y != 200 {
		t.Errorf("expected the center coordinate to project to the image center, got (%v,%v)", x, y)
	}
}

func TestProjectNorthIsUp(t *testing.T) {
	v := View{CenterLat: 0, CenterLng: 0, PixelsPerDegree: 10, Width: 100, Height: 100}
	_, yNorth := v.project(1, 0)
	_, ySouth := v.project(-1, 0)
	if yNorth >= ySouth {
		t.Errorf("expected a point north of center to have a smaller y (higher on screen) than one south of it: north=%v south=%v", yNorth, ySouth)
	}
}
