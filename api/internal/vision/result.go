package vision

import (
	"math"
	"strings"
)

// ConfidenceThreshold is the fixed score below which detections are dropped
// from the response.
const ConfidenceThreshold = 0.65

// Box is a bounding box as top-left corner plus size.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mask is the polygon outline of a detected instance.
type Mask struct {
	Points [][2]float64 `json:"points"`
}

// Object is one detected object in the response.
type Object struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Box   Box     `json:"box"`
	Mask  *Mask   `json:"mask,omitempty"`
}

// Result is the response body of the segment endpoint.
type Result struct {
	Objects []Object `json:"objects"`
}

// BuildResult turns raw detections into the response shape. Detections below
// ConfidenceThreshold are dropped, as are those whose label does not match a
// non-empty target filter (compared case-insensitively). Output order follows
// detection order. Coordinates and scores are rounded to 2 decimals, the box
// is converted from corner pairs to origin plus size.
func BuildResult(dets []Detection, labels []string, target string) Result {
	target = strings.TrimSpace(target)

	objects := make([]Object, 0, len(dets))
	for _, d := range dets {
		if d.Confidence < ConfidenceThreshold {
			continue
		}
		if d.ClassID < 0 || d.ClassID >= len(labels) {
			// no name to resolve the class to
			continue
		}
		label := labels[d.ClassID]
		if target != "" && !strings.EqualFold(label, target) {
			continue
		}

		obj := Object{
			Label: label,
			Score: round2(d.Confidence),
			Box: Box{
				X:      round2(d.Box[0]),
				Y:      round2(d.Box[1]),
				Width:  round2(d.Box[2] - d.Box[0]),
				Height: round2(d.Box[3] - d.Box[1]),
			},
		}

		if d.Polygon != nil {
			points := make([][2]float64, len(d.Polygon))
			for i, p := range d.Polygon {
				points[i] = [2]float64{round2(p[0]), round2(p[1])}
			}
			obj.Mask = &Mask{Points: points}
		}

		objects = append(objects, obj)
	}

	return Result{Objects: objects}
}

// round2 rounds to 2 decimals, halves away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
