package layout

import "math"

// maxChordDeviation is the largest distance, in pixels, an arc chord may
// deviate from the true circle when sampling branch paths.
const maxChordDeviation = 0.5

// ShortestAngleDelta canonicalizes the signed angular difference b−a into
// (−π, π]. Interpolating along this delta always takes the short way
// around the circle.
func ShortestAngleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// LerpAngle interpolates between two angles along the shortest path.
func LerpAngle(a, b, t float64) float64 {
	return a + ShortestAngleDelta(a, b)*t
}

// Lerp interpolates linearly between two scalars.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// arcSegments returns how many chords are needed so that no chord deviates
// from the arc by more than maxChordDeviation pixels. The sagitta of a
// chord spanning angle d on radius r is r·(1−cos(d/2)).
func arcSegments(radius, span float64) int {
	span = math.Abs(span)
	if span == 0 || radius <= 0 {
		return 1
	}
	if maxChordDeviation >= radius {
		return 1
	}
	maxSpan := 2 * math.Acos(1-maxChordDeviation/radius)
	if maxSpan <= 0 {
		return 1
	}
	n := int(math.Ceil(span / maxSpan))
	if n < 1 {
		n = 1
	}
	return n
}

// ArcRadialPath samples the branch path from a source at polar
// (sourceRadius, sourceAngle) to a target at (targetRadius, targetAngle):
// an arc on the source circle from the source angle to the target angle
// (shortest direction), then a radial segment out to the target. The
// returned poly-line is dense enough that chord error stays under half a
// pixel.
func ArcRadialPath(sourceRadius, sourceAngle, targetRadius, targetAngle float64) [][2]float64 {
	delta := ShortestAngleDelta(sourceAngle, targetAngle)
	segments := arcSegments(sourceRadius, delta)

	path := make([][2]float64, 0, segments+2)
	for i := 0; i <= segments; i++ {
		a := sourceAngle + delta*float64(i)/float64(segments)
		path = append(path, [2]float64{
			sourceRadius * math.Cos(a),
			sourceRadius * math.Sin(a),
		})
	}
	// Radial segment from the arc end to the target.
	path = append(path, [2]float64{
		targetRadius * math.Cos(targetAngle),
		targetRadius * math.Sin(targetAngle),
	})
	return path
}

// CanonicalAngle normalizes an angle into (−π, π].
func CanonicalAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// TextAnchor returns the label anchor for a leaf at the given angle:
// "start" on the right half of the circle, "end" on the left.
func TextAnchor(angle float64) string {
	a := CanonicalAngle(angle)
	if a > -math.Pi/2 && a < math.Pi/2 {
		return "start"
	}
	return "end"
}
