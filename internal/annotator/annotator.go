// Package annotator owns the annotation session state: the image set of the
// open folder, the cursor into it, the annotation store and the in-progress
// drag. Every user action is a method that updates the state and returns
// what the canvas must draw next; no method touches the GUI.
package annotator

import (
	"path/filepath"

	"fyannotate/internal/annotation"
	"fyannotate/internal/scan"
)

// Backend provides folder listing and annotation file persistence.
type Backend interface {
	ListImages(dir string) (scan.FileItems, error)
	SaveAnnotations(path string, store annotation.Store) error
	LoadAnnotations(path string) (annotation.Store, error)
}

// Point is a pointer position in canvas pixels.
type Point struct {
	X, Y int
}

// Frame tells the canvas what to show: the image at Path and the boxes
// recorded for its base Filename, in drawing order.
type Frame struct {
	Index    int
	Path     string
	Filename string
	Rects    []annotation.Rect
}

// Annotator is the single owner of all mutable session state.
type Annotator struct {
	backend Backend

	dir    string
	images scan.FileItems
	index  int
	store  annotation.Store

	drawing bool
	start   Point
}

// New creates an Annotator with an empty image set and store.
func New(backend Backend) *Annotator {
	return &Annotator{
		backend: backend,
		store:   annotation.NewStore(),
	}
}

// Dir returns the folder most recently opened.
func (a *Annotator) Dir() string { return a.dir }

// Len returns the size of the image set.
func (a *Annotator) Len() int { return len(a.images) }

// Index returns the current cursor.
func (a *Annotator) Index() int { return a.index }

// Images returns the paths of the image set in display order.
func (a *Annotator) Images() []string { return a.images.Paths() }

// Drawing reports whether a drag is in progress.
func (a *Annotator) Drawing() bool { return a.drawing }

// Store returns a copy of the annotation store.
func (a *Annotator) Store() annotation.Store { return a.store.Clone() }

// Current returns the path of the image under the cursor.
func (a *Annotator) Current() (string, bool) {
	if len(a.images) == 0 {
		return "", false
	}
	return a.images[a.index].Path, true
}

// Frame describes the current image and its boxes. ok is false when the
// image set is empty, in which case the canvas must be left as is.
func (a *Annotator) Frame() (Frame, bool) {
	path, ok := a.Current()
	if !ok {
		return Frame{}, false
	}
	name := filepath.Base(path)
	return Frame{
		Index:    a.index,
		Path:     path,
		Filename: name,
		Rects:    a.store.Rects(name),
	}, true
}

// OpenFolder replaces the image set with the images of dir and moves the
// cursor to the first one. On error the previous state is kept.
func (a *Annotator) OpenFolder(dir string) (Frame, bool, error) {
	items, err := a.backend.ListImages(dir)
	if err != nil {
		return Frame{}, false, err
	}
	a.dir = dir
	a.images = items
	a.index = 0
	f, ok := a.Frame()
	return f, ok, nil
}

// Seek moves the cursor to index, clamped to the image set.
func (a *Annotator) Seek(index int) (Frame, bool) {
	if len(a.images) == 0 {
		return Frame{}, false
	}
	if index < 0 {
		index = 0
	}
	if index > len(a.images)-1 {
		index = len(a.images) - 1
	}
	a.index = index
	return a.Frame()
}

// Next advances the cursor. ok is false, and nothing changes, at the last
// image.
func (a *Annotator) Next() (Frame, bool) {
	if a.index >= len(a.images)-1 {
		return Frame{}, false
	}
	a.index++
	return a.Frame()
}

// Prev moves the cursor back. ok is false, and nothing changes, at the first
// image.
func (a *Annotator) Prev() (Frame, bool) {
	if a.index <= 0 {
		return Frame{}, false
	}
	a.index--
	return a.Frame()
}

// Press starts a drag at p.
func (a *Annotator) Press(p Point) {
	a.drawing = true
	a.start = p
}

// Drag returns the transient box from the press point to p. ok is false
// when no drag is in progress.
func (a *Annotator) Drag(p Point) (annotation.Rect, bool) {
	if !a.drawing {
		return annotation.Rect{}, false
	}
	return annotation.NewRect(a.start.X, a.start.Y, p.X, p.Y), true
}

// Release ends the drag at p and records the box against the current image.
// ok is false, and nothing is recorded, when no drag is in progress or no
// image is shown.
func (a *Annotator) Release(p Point) (annotation.Rect, bool) {
	if !a.drawing {
		return annotation.Rect{}, false
	}
	a.drawing = false

	path, ok := a.Current()
	if !ok {
		return annotation.Rect{}, false
	}
	r := annotation.NewRect(a.start.X, a.start.Y, p.X, p.Y)
	a.store.Add(filepath.Base(path), r)
	return r, true
}

// SaveAnnotations writes the whole store to path.
func (a *Annotator) SaveAnnotations(path string) error {
	return a.backend.SaveAnnotations(path, a.store)
}

// LoadAnnotations replaces the store with the contents of path and returns
// the current frame so its boxes can be redrawn. On error the store is left
// untouched.
func (a *Annotator) LoadAnnotations(path string) (Frame, bool, error) {
	store, err := a.backend.LoadAnnotations(path)
	if err != nil {
		return Frame{}, false, err
	}
	a.store = store
	f, ok := a.Frame()
	return f, ok, nil
}
