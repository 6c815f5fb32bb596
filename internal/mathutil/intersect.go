package mathutil

import "math"

// SegmentSegmentIntersection checks for an intersection between segments [a,b]
// and [p,q]. If one exists, it returns the parameters s,t in [0,1] such that
// a + s*(b-a) = p + t*(q-p).
//
// Solves the 2x2 linear system via Cramer's rule and rejects a near-singular
// determinant (parallel or collinear segments).
func SegmentSegmentIntersection(a, b, p, q Vec2) (s, t float32, ok bool) {
	x := b.X - a.X
	y := p.X - q.X
	z := p.X - a.X

	u := b.Y - a.Y
	v := p.Y - q.Y
	w := p.Y - a.Y

	det := x*v - y*u
	if abs32(det) < Epsilon {
		return 0, 0, false
	}

	invDet := 1 / det
	s = invDet * (v*z - y*w)
	t = invDet * (x*w - u*z)

	if s < 0 || s > 1 || t < 0 || t > 1 {
		return 0, 0, false
	}
	return s, t, true
}

// RaySegmentIntersection finds the smallest t in [0,1] such that origin+t*dir
// lies on the segment [p,q]. dir is treated as already clipped to one frame of
// motion (t ranges over [0,1], not the full ray).
func RaySegmentIntersection(origin, dir, p, q Vec2) (t float32, ok bool) {
	s, _, found := SegmentSegmentIntersection(origin, Add(origin, dir), p, q)
	if !found {
		return 0, false
	}
	return s, true
}

// SegmentMovingCircleIntersection returns the smallest t in [0,1] at which a
// circle of radius r, starting at c and moving by delta, first touches the
// segment [p1,p2].
//
// The segment is treated as the spine of a capsule of radius r: the circle can
// contact either of the two parallel offset "sides" of the capsule, or one of
// the two rounded end caps at p1/p2. We solve the side case directly (motion
// along the wall normal) and the two cap cases as circle-vs-point sweeps, and
// report the smallest valid t among all three.
func SegmentMovingCircleIntersection(p1, p2, c, delta Vec2, r float32) (t float32, ok bool) {
	if delta == (Vec2{}) {
		return 0, false
	}

	segDir := Sub(p2, p1)
	segLen := Length(segDir)
	if segLen < Epsilon {
		// Degenerate segment: treat as a single point cap.
		if ct, cok := circlePointIntersection(c, delta, p1, r); cok {
			return ct, true
		}
		return 0, false
	}
	segDirN := Scale(segDir, 1/segLen)
	normal := Normalize(Perp(segDirN))

	rel := Sub(c, p1)
	distN0 := Dot(rel, normal)
	distN1 := Dot(delta, normal)

	best := float32(-1)
	consider := func(candidate float32) {
		if candidate < 0 || candidate > 1 {
			return
		}
		if best < 0 || candidate < best {
			best = candidate
		}
	}

	if abs32(distN1) >= Epsilon {
		for _, sign := range [2]float32{1, -1} {
			tCandidate := (sign*r - distN0) / distN1
			if tCandidate < 0 || tCandidate > 1 {
				continue
			}
			// Position along the segment spine at the moment of contact.
			posAtT := Add(c, Scale(delta, tCandidate))
			along := Dot(Sub(posAtT, p1), segDirN)
			if along >= 0 && along <= segLen {
				consider(tCandidate)
			}
		}
	} else if abs32(distN0) <= r {
		// Moving parallel to the wall within contact distance: already touching
		// at t=0 if the tangential projection is within the segment span.
		along := Dot(rel, segDirN)
		if along >= 0 && along <= segLen {
			consider(0)
		}
	}

	// End caps: the circle may clip a corner before reaching the flat side.
	if ct, cok := circlePointIntersection(c, delta, p1, r); cok {
		consider(ct)
	}
	if ct, cok := circlePointIntersection(c, delta, p2, r); cok {
		consider(ct)
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

// circlePointIntersection finds the smallest t in [0,1] such that a circle of
// radius r centered at c, moving by delta, first touches the fixed point p.
// This is the standard moving-point-vs-circle quadratic.
func circlePointIntersection(c, delta, p Vec2, r float32) (t float32, ok bool) {
	rel := Sub(c, p)
	a := SquareLength(delta)
	if a < Epsilon {
		return 0, false
	}
	b := 2 * Dot(rel, delta)
	cc := SquareLength(rel) - r*r

	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)

	// Smallest non-negative root in [0,1].
	if t0 >= 0 && t0 <= 1 {
		return t0, true
	}
	if t1 >= 0 && t1 <= 1 {
		return t1, true
	}
	return 0, false
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
