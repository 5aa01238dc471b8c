// Package annotation holds the bounding boxes drawn on images and their
// JSON file representation.
//
// An annotation file is a single JSON object keyed by image base filename.
// Each value is an array of boxes and each box is a 4-element array
// [x0, y0, x1, y1] in display pixel coordinates.
package annotation

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// Rect is one bounding box in display coordinates. Corners are stored as
// drawn: X0 may be greater than X1 and Y0 greater than Y1.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// NewRect builds a Rect from its two corners.
func NewRect(x0, y0, x1, y1 int) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// MarshalJSON encodes the box as [x0, y0, x1, y1].
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{r.X0, r.Y0, r.X1, r.Y1})
}

// UnmarshalJSON decodes a 4-element numeric array. Fractional values are
// truncated toward zero; values outside the int32 range are rejected.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("box must be an array of numbers: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("box must have 4 coordinates, got %d", len(v))
	}
	var c [4]int
	for i, f := range v {
		f = math.Trunc(f)
		if f < math.MinInt32 || f > math.MaxInt32 {
			return fmt.Errorf("box coordinate %g out of range", v[i])
		}
		c[i] = int(f)
	}
	*r = NewRect(c[0], c[1], c[2], c[3])
	return nil
}

// Store maps an image base filename to its boxes in drawing order.
type Store map[string][]Rect

// NewStore returns an empty store.
func NewStore() Store {
	return make(Store)
}

// Add appends r to the boxes of filename, creating the entry if needed.
func (s Store) Add(filename string, r Rect) {
	s[filename] = append(s[filename], r)
}

// Rects returns the boxes recorded for filename. The returned slice is a copy.
func (s Store) Rects(filename string) []Rect {
	rects, ok := s[filename]
	if !ok {
		return nil
	}
	out := make([]Rect, len(rects))
	copy(out, rects)
	return out
}

// Keys returns the filenames in the store, sorted.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the total number of boxes across all filenames.
func (s Store) Count() int {
	n := 0
	for _, rects := range s {
		n += len(rects)
	}
	return n
}

// Clone returns a deep copy of the store.
func (s Store) Clone() Store {
	c := make(Store, len(s))
	for k, rects := range s {
		cp := make([]Rect, len(rects))
		copy(cp, rects)
		c[k] = cp
	}
	return c
}

// Encode writes the store as JSON.
func (s Store) Encode(w io.Writer) error {
	if s == nil {
		s = Store{}
	}
	return json.NewEncoder(w).Encode(s)
}

// Decode reads a store from r. A JSON null decodes to an empty store.
// Anything after the top-level value other than whitespace is an error.
func Decode(r io.Reader) (Store, error) {
	var s Store
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse annotations: %w", err)
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return nil, fmt.Errorf("failed to parse annotations: extra data after the top-level object")
	}
	if s == nil {
		s = NewStore()
	}
	return s, nil
}

// SaveFile writes the whole store to path, replacing any existing file.
func SaveFile(path string, s Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create annotation file %s: %w", path, err)
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write annotation file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close annotation file %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a store from path.
func LoadFile(path string) (Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file %s: %w", path, err)
	}
	defer f.Close()
	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
