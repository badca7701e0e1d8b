// Package spatial provides the per-step nearest-neighbor index over boid
// positions. An Index is built once from a snapshot of positions and is
// read-only afterwards, so any number of goroutines may query it.
package spatial

import (
	"sort"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Neighbor is one k-nearest result. Index refers to the position slice the
// Index was built from and is only meaningful for that snapshot.
type Neighbor struct {
	Index  int
	DistSq float64
}

// Index is a 2-D k-d tree keyed by position with the slice offset as payload.
type Index struct {
	tree  *kdtree.Tree
	count int
}

// Build constructs an Index over positions. The slice is copied, the caller
// keeps ownership of it. An empty slice yields an empty Index.
func Build(positions []geometry.Vector2D) *Index {
	if len(positions) == 0 {
		return &Index{}
	}
	pts := make(points, len(positions))
	for i, p := range positions {
		pts[i] = point{pos: p, index: i}
	}
	return &Index{
		tree:  kdtree.New(pts, false),
		count: len(pts),
	}
}

// Len returns the number of indexed points.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.count
}

// KNearest returns the min(k, Len()) points closest to q ordered by
// ascending squared distance, ties broken by ascending Index.
func (ix *Index) KNearest(q geometry.Vector2D, k int) []Neighbor {
	if ix == nil || ix.tree == nil || k <= 0 {
		return nil
	}
	if k > ix.count {
		k = ix.count
	}

	keep := kdtree.NewNKeeper(k)
	ix.tree.NearestSet(keep, point{pos: q, index: -1})

	out := make([]Neighbor, 0, k)
	for _, c := range keep.Heap {
		// NKeeper seeds its heap with an empty sentinel.
		p, ok := c.Comparable.(point)
		if !ok {
			continue
		}
		out = append(out, Neighbor{Index: p.index, DistSq: c.Dist})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistSq != out[j].DistSq {
			return out[i].DistSq < out[j].DistSq
		}
		return out[i].Index < out[j].Index
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// point is the kdtree.Comparable stored in the tree.
type point struct {
	pos   geometry.Vector2D
	index int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	if d == 0 {
		return p.pos.X - q.pos.X
	}
	return p.pos.Y - q.pos.Y
}

func (p point) Dims() int { return 2 }

// Distance is the squared Euclidean distance, the ranking metric of the tree.
func (p point) Distance(c kdtree.Comparable) float64 {
	return p.pos.DistanceSquaredTo(c.(point).pos)
}

// points is the kdtree.Interface handed to kdtree.New.
type points []point

func (p points) Index(i int) kdtree.Comparable        { return p[i] }
func (p points) Len() int                             { return len(p) }
func (p points) Pivot(d kdtree.Dim) int               { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along a single dimension for median selection.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.points[i].pos.X < p.points[j].pos.X
	}
	return p.points[i].pos.Y < p.points[j].pos.Y
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
