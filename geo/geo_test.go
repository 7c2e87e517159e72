package geo

import "testing"

func TestCrossSign(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 10}
	left := Point{Lat: 10, Lng: 5}
	right := Point{Lat: -10, Lng: 5}

	if Cross(a, b, left) <= 0 {
		t.Errorf("expected positive cross product for point left of a->b")
	}
	if Cross(a, b, right) >= 0 {
		t.Errorf("expected negative cross product for point right of a->b")
	}
}

func TestIntersectCrossing(t *testing.T) {
	ab := Segment{A: Point{Lat: 0, Lng: 0}, B: Point{Lat: 0, Lng: 10}, AID: "A", BID: "B"}
	cd := Segment{A: Point{Lat: -5, Lng: 5}, B: Point{Lat: 5, Lng: 5}, AID: "C", BID: "D"}
	if !Intersect(ab, cd) {
		t.Errorf("expected segments to intersect")
	}
}

func TestIntersectNonCrossing(t *testing.T) {
	ab := Segment{A: Point{Lat: 0, Lng: 0}, B: Point{Lat: 0, Lng: 10}, AID: "A", BID: "B"}
	cd := Segment{A: Point{Lat: 5, Lng: 0}, B: Point{Lat: 5, Lng: 10}, AID: "C", BID: "D"}
	if Intersect(ab, cd) {
		t.Errorf("expected parallel segments not to intersect")
	}
}

func TestIntersectSharedEndpoint(t *testing.T) {
	ab := Segment{A: Point{Lat: 0, Lng: 0}, B: Point{Lat: 0, Lng: 10}, AID: "A", BID: "B"}
	cd := Segment{A: Point{Lat: 0, Lng: 10}, B: Point{Lat: 10, Lng: 10}, AID: "B", BID: "E"}
	if Intersect(ab, cd) {
		t.Errorf("segments sharing an endpoint identifier must never count as crossing")
	}
}

func TestIntersectCollinearTouch(t *testing.T) {
	ab := Segment{A: Point{Lat: 0, Lng: 0}, B: Point{Lat: 0, Lng: 10}, AID: "A", BID: "B"}
	cd := Segment{A: Point{Lat: 0, Lng: 5}, B: Point{Lat: 0, Lng: 20}, AID: "C", BID: "D"}
	if Intersect(ab, cd) {
		t.Errorf("collinear touch must return false")
	}
}
