// Package passage holds the per-environment passage and intersection tables
// used to stitch hallway plans.
//
// A Store is built once from Tables and is read-only afterwards; it is safe
// to share between goroutines without locking.
package passage

import (
	"fmt"
	"os"

	"github.com/zero-day-ai/navplan/geometry"
	"github.com/zero-day-ai/navplan/naverr"
	"gopkg.in/yaml.v3"
)

// Orientation is the dominant axis of a passage.
type Orientation int

const (
	// Vertical passages are at least as tall as they are wide.
	Vertical Orientation = iota
	// Horizontal passages are wider than they are tall.
	Horizontal
)

// String implements fmt.Stringer.
func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Cell is a grid coordinate in the passage map.
type Cell struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Adjacency links two intersections through a passage. Trail is the passage
// polyline in meters, oriented From -> To.
type Adjacency struct {
	From    int              `yaml:"from"`
	Passage int              `yaml:"passage"`
	To      int              `yaml:"to"`
	Trail   []geometry.Point `yaml:"trail"`
}

// Through maps a three-label sequence to a connecting polyline.
type Through struct {
	First  int              `yaml:"first"`
	Middle int              `yaml:"middle"`
	Last   int              `yaml:"last"`
	Trail  []geometry.Point `yaml:"trail"`
}

// Tables is the raw environment description. Centroids are indexed by
// label-1 and given in centimeters; an empty entry means the label has no
// averaged position.
type Tables struct {
	Grid              [][]int        `yaml:"grid,omitempty"`
	Adjacency         []Adjacency    `yaml:"adjacency"`
	Centroids         [][]int        `yaml:"centroids_cm"`
	IntersectionGrids map[int][]Cell `yaml:"intersection_grids,omitempty"`
	PassageGrids      map[int][]Cell `yaml:"passage_grids,omitempty"`
	Through           []Through      `yaml:"through,omitempty"`
}

// Link is the result of a passage lookup between two intersections.
type Link struct {
	Passage  int
	Trail    []geometry.Point
	Reversed bool
}

// Store is the write-once lookup structure built from Tables.
type Store struct {
	grid              [][]int
	adjacency         []Adjacency
	centroids         []geometry.Point
	intersectionGrids map[int][]Cell
	passageGrids      map[int][]Cell
	orientation       map[int]Orientation
	through           []Through
}

// NewStore validates tables and derives centroids and passage orientation.
func NewStore(t Tables) (*Store, error) {
	s := &Store{
		grid:              t.Grid,
		adjacency:         make([]Adjacency, 0, len(t.Adjacency)),
		centroids:         make([]geometry.Point, 0, len(t.Centroids)),
		intersectionGrids: t.IntersectionGrids,
		passageGrids:      t.PassageGrids,
		orientation:       make(map[int]Orientation, len(t.Adjacency)),
		through:           make([]Through, 0, len(t.Through)),
	}

	for i, c := range t.Centroids {
		switch len(c) {
		case 0:
			s.centroids = append(s.centroids, geometry.Point{})
		case 2:
			s.centroids = append(s.centroids, geometry.Point{X: float64(c[0]) / 100.0, Y: float64(c[1]) / 100.0})
		default:
			return nil, naverr.NewValidationError("passage.NewStore",
				fmt.Errorf("centroid for label %d has %d coordinates", i+1, len(c)))
		}
	}

	for i, a := range t.Adjacency {
		if a.Passage <= 0 {
			return nil, naverr.NewValidationError("passage.NewStore",
				fmt.Errorf("adjacency entry %d has invalid passage label %d", i, a.Passage))
		}
		if len(a.Trail) == 0 {
			return nil, naverr.NewValidationError("passage.NewStore",
				fmt.Errorf("adjacency entry %d (passage %d) has an empty trail", i, a.Passage))
		}
		s.adjacency = append(s.adjacency, Adjacency{
			From:    a.From,
			Passage: a.Passage,
			To:      a.To,
			Trail:   clonePoints(a.Trail),
		})
		s.orientation[a.Passage] = orientationOf(t.PassageGrids[a.Passage])
	}

	for _, th := range t.Through {
		s.through = append(s.through, Through{
			First:  th.First,
			Middle: th.Middle,
			Last:   th.Last,
			Trail:  clonePoints(th.Trail),
		})
	}

	return s, nil
}

// orientationOf is horizontal iff the bounding box is wider than tall.
func orientationOf(cells []Cell) Orientation {
	if len(cells) == 0 {
		return Vertical
	}
	minX, maxX := cells[0].X, cells[0].X
	minY, maxY := cells[0].Y, cells[0].Y
	for _, c := range cells[1:] {
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	}
	if maxX-minX > maxY-minY {
		return Horizontal
	}
	return Vertical
}

// Centroid returns the averaged position of a 1-based label, in meters.
func (s *Store) Centroid(label int) (geometry.Point, error) {
	if label < 1 || label > len(s.centroids) {
		return geometry.Point{}, naverr.NewNotFoundError("Store.Centroid", fmt.Errorf("centroid for label %d", label)).
			WithContext(map[string]any{"label": label})
	}
	return s.centroids[label-1], nil
}

// IntersectionGrid returns the grid cells of an intersection.
func (s *Store) IntersectionGrid(label int) []Cell {
	return cloneCells(s.intersectionGrids[label])
}

// PassageGrid returns the grid cells of a passage.
func (s *Store) PassageGrid(label int) []Cell {
	return cloneCells(s.passageGrids[label])
}

// Orientation returns the derived orientation of a passage. Passages not in
// the adjacency table report Vertical.
func (s *Store) Orientation(passage int) Orientation {
	return s.orientation[passage]
}

// Passage finds the passage between two intersections, searching the
// adjacency table in either direction. The trail is reversed when the pair
// matched reversed, so it always runs from -> to.
func (s *Store) Passage(from, to int) (Link, error) {
	for _, a := range s.adjacency {
		if a.From == from && a.To == to {
			return Link{Passage: a.Passage, Trail: clonePoints(a.Trail)}, nil
		}
		if a.From == to && a.To == from {
			return Link{Passage: a.Passage, Trail: geometry.Reversed(a.Trail), Reversed: true}, nil
		}
	}
	return Link{}, naverr.NewNotFoundError("Store.Passage", fmt.Errorf("no passage between intersections %d and %d", from, to)).
		WithContext(map[string]any{"from": from, "to": to})
}

// Through returns the connecting polyline registered for the label sequence
// (a, b, c), matched in either direction. A reversed match returns the
// polyline reversed.
func (s *Store) Through(a, b, c int) ([]geometry.Point, bool) {
	for _, th := range s.through {
		if th.First == a && th.Middle == b && th.Last == c {
			return clonePoints(th.Trail), true
		}
		if th.Last == a && th.Middle == b && th.First == c {
			return geometry.Reversed(th.Trail), true
		}
	}
	return nil, false
}

// LabelAt returns the label stored in the passage grid at (x, y), or 0 when
// the cell lies outside the grid.
func (s *Store) LabelAt(x, y int) int {
	if x < 0 || x >= len(s.grid) {
		return 0
	}
	if y < 0 || y >= len(s.grid[x]) {
		return 0
	}
	return s.grid[x][y]
}

// Labels returns the number of averaged centroids.
func (s *Store) Labels() int {
	return len(s.centroids)
}

// Parse decodes YAML tables and builds a Store.
func Parse(data []byte) (*Store, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse passage tables: %w", err)
	}
	return NewStore(t)
}

// LoadFile reads YAML tables from path.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read passage tables %s: %w", path, err)
	}
	return Parse(data)
}

func clonePoints(pts []geometry.Point) []geometry.Point {
	if pts == nil {
		return nil
	}
	out := make([]geometry.Point, len(pts))
	copy(out, pts)
	return out
}

func cloneCells(cells []Cell) []Cell {
	if cells == nil {
		return nil
	}
	out := make([]Cell, len(cells))
	copy(out, cells)
	return out
}
