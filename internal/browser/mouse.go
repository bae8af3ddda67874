package browser

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Point is a viewport coordinate
type Point struct {
	X float64
	Y float64
}

const bezierSteps = 50

// mouse remembers where the cursor is so every move starts where the
// previous one ended
type mouse struct {
	page *rod.Page
	pos  Point
	rng  *rand.Rand
}

func newMouse(page *rod.Page, rng *rand.Rand) *mouse {
	return &mouse{
		page: page,
		pos:  Point{X: rng.Float64() * 100, Y: rng.Float64() * 100},
		rng:  rng,
	}
}

// moveTo moves the cursor along a cubic Bézier curve, slower at both ends,
// with an occasional overshoot and correction. Dispatch failures are ignored.
func (m *mouse) moveTo(x, y float64) {
	end := Point{X: x, Y: y}
	c1, c2 := controlPoints(m.pos, end, m.rng)

	path := CubicBezier(m.pos, end, c1, c2, bezierSteps)
	for i, p := range path {
		m.dispatch(p)
		time.Sleep(easeDelay(float64(i) / float64(len(path))))
	}

	if m.rng.Float64() < 0.3 {
		m.dispatch(Point{X: x + (m.rng.Float64()-0.5)*5, Y: y + (m.rng.Float64()-0.5)*5})
		time.Sleep(time.Duration(10+m.rng.Intn(20)) * time.Millisecond)
		m.dispatch(end)
	}

	m.pos = end
}

func (m *mouse) dispatch(p Point) {
	_ = proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved,
		X:    p.X,
		Y:    p.Y,
	}.Call(m.page)
}

// CubicBezier samples steps points on the curve from start to end
func CubicBezier(start, end, c1, c2 Point, steps int) []Point {
	if steps < 2 {
		return []Point{end}
	}

	points := make([]Point, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		u := 1 - t

		// B(t) = (1-t)³P₀ + 3(1-t)²tP₁ + 3(1-t)t²P₂ + t³P₃
		points[i] = Point{
			X: u*u*u*start.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
			Y: u*u*u*start.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
		}
	}
	return points
}

// controlPoints places two control points at a third and two thirds of the
// way, pushed sideways by a random fraction of the distance
func controlPoints(start, end Point, rng *rand.Rand) (Point, Point) {
	dx := end.X - start.X
	dy := end.Y - start.Y
	distance := math.Hypot(dx, dy)
	perp := math.Atan2(dy, dx) + math.Pi/2

	offset1 := (rng.Float64() - 0.5) * distance * 0.3
	offset2 := (rng.Float64() - 0.5) * distance * 0.3

	c1 := Point{
		X: start.X + dx/3 + math.Cos(perp)*offset1,
		Y: start.Y + dy/3 + math.Sin(perp)*offset1,
	}
	c2 := Point{
		X: start.X + 2*dx/3 + math.Cos(perp)*offset2,
		Y: start.Y + 2*dy/3 + math.Sin(perp)*offset2,
	}
	return c1, c2
}

// easeDelay is slow at the edges of the path and fast in the middle
func easeDelay(progress float64) time.Duration {
	speed := 1 - math.Abs(2*progress-1)
	return time.Duration(float64(10*time.Millisecond) / (speed + 0.5))
}
