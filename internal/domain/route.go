package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/mapahead-service/internal/pkg/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

var (
	ErrEmptyRoute        = errors.New("route has no points")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Route is an ordered, immutable polyline with a nearest-point index built once
// at construction. Points are never reordered, so index positions stay valid.
type Route struct {
	id         string
	points     []Coordinate
	cumulative []float64
	bound      orb.Bound
	index      *quadtree.Quadtree
	source     []byte
	filename   string
	createdAt  time.Time
}

// indexedPoint is the quadtree entry: the geometry plus its position in the route.
type indexedPoint struct {
	pos int
	pt  orb.Point
}

func (p indexedPoint) Point() orb.Point {
	return p.pt
}

// NewRoute copies points, validates them and builds the spatial index and the
// cumulative along-route distances. source and filename are optional and kept
// for re-export of the original track.
func NewRoute(id string, points []Coordinate, source []byte, filename string) (*Route, error) {
	if len(points) == 0 {
		return nil, ErrEmptyRoute
	}

	owned := make([]Coordinate, len(points))
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		if !p.Valid() {
			return nil, fmt.Errorf("%w at index %d: lat=%v lon=%v", ErrInvalidCoordinate, i, p.Lat, p.Lon)
		}
		owned[i] = p
		mp[i] = p.Point()
	}

	bound := mp.Bound()
	index := quadtree.New(bound)
	for i, pt := range mp {
		if err := index.Add(indexedPoint{pos: i, pt: pt}); err != nil {
			return nil, fmt.Errorf("failed to index route point %d: %w", i, err)
		}
	}

	cumulative := make([]float64, len(owned))
	for i := 1; i < len(owned); i++ {
		cumulative[i] = cumulative[i-1] + GreatCircleDistance(owned[i-1], owned[i])
	}

	var src []byte
	if len(source) > 0 {
		src = make([]byte, len(source))
		copy(src, source)
	}

	return &Route{
		id:         id,
		points:     owned,
		cumulative: cumulative,
		bound:      bound,
		index:      index,
		source:     src,
		filename:   filename,
		createdAt:  time.Now().UTC(),
	}, nil
}

func (r *Route) ID() string {
	return r.id
}

func (r *Route) Len() int {
	return len(r.points)
}

// Point returns the i-th route point. It panics when i is out of range, like a slice.
func (r *Route) Point(i int) Coordinate {
	return r.points[i]
}

// Points returns a copy of the route points.
func (r *Route) Points() []Coordinate {
	out := make([]Coordinate, len(r.points))
	copy(out, r.points)
	return out
}

// NearestIndex returns the position of the route point nearest to c.
// Equidistant points may resolve to any one of them.
func (r *Route) NearestIndex(c Coordinate) int {
	found := r.index.Find(c.Point())
	if found == nil {
		return 0
	}
	return found.(indexedPoint).pos
}

// DistanceAt returns the along-route distance in km from the first point to point i.
func (r *Route) DistanceAt(i int) float64 {
	return r.cumulative[i]
}

// DistanceAlong returns the along-route distance to the route point nearest to c.
func (r *Route) DistanceAlong(c Coordinate) float64 {
	return r.cumulative[r.NearestIndex(c)]
}

// DistanceTo returns the distance in km from c to the nearest route point.
func (r *Route) DistanceTo(c Coordinate) float64 {
	return GreatCircleDistance(c, r.points[r.NearestIndex(c)])
}

// TotalLength is the along-route distance to the last point.
func (r *Route) TotalLength() float64 {
	return r.cumulative[len(r.cumulative)-1]
}

// BoundingBox pads the route extent by bufferKm, converting with 1 degree = 111 km.
func (r *Route) BoundingBox(bufferKm float64) BoundingBox {
	b := r.bound.Pad(bufferKm / geo.KmPerDegree)
	return BoundingBox{
		South: b.Min.Lat(),
		West:  b.Min.Lon(),
		North: b.Max.Lat(),
		East:  b.Max.Lon(),
	}
}

// Source returns the original track bytes, or nil when the route was not uploaded from a file.
func (r *Route) Source() []byte {
	return r.source
}

func (r *Route) HasSource() bool {
	return len(r.source) > 0
}

func (r *Route) Filename() string {
	return r.filename
}

func (r *Route) CreatedAt() time.Time {
	return r.createdAt
}
