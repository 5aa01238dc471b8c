package ui

import (
	"image"
	"image/color"
	"math"

	"fyannotate/internal/annotation"
	"fyannotate/internal/annotator"
	"fyannotate/internal/service"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var (
	highlightColor = service.BoxColor              // committed boxes
	transientColor = color.NRGBA{B: 0xff, A: 0xff} // box being dragged
	canvasBgColor  = color.Black

	displaySize = fyne.NewSize(service.DisplayWidth, service.DisplayHeight)
)

const boxStrokeWidth float32 = 1

// AnnotationCanvas shows one display-sized image with its boxes on top and
// reports pointer press, drag and release in canvas coordinates.
type AnnotationCanvas struct {
	widget.BaseWidget

	background *canvas.Rectangle
	image      *canvas.Image
	boxes      []*canvas.Rectangle
	transient  *canvas.Rectangle

	dragging bool
	lastDrag fyne.Position

	OnPress   func(annotator.Point)
	OnDrag    func(annotator.Point)
	OnRelease func(annotator.Point)
}

// NewAnnotationCanvas creates an empty canvas.
func NewAnnotationCanvas() *AnnotationCanvas {
	c := &AnnotationCanvas{
		background: canvas.NewRectangle(canvasBgColor),
		image:      &canvas.Image{FillMode: canvas.ImageFillStretch},
	}
	c.image.Hide()
	c.ExtendBaseWidget(c)
	return c
}

// SetFrame replaces everything on the canvas with img and one outline per box.
func (c *AnnotationCanvas) SetFrame(img image.Image, rects []annotation.Rect) {
	c.image.Image = img
	if img == nil {
		c.image.Hide()
	} else {
		c.image.Show()
	}
	c.boxes = c.boxes[:0]
	for _, r := range rects {
		c.boxes = append(c.boxes, newOutline(r, highlightColor))
	}
	c.transient = nil
	c.Refresh()
}

// AddBox draws a committed outline.
func (c *AnnotationCanvas) AddBox(r annotation.Rect) {
	c.boxes = append(c.boxes, newOutline(r, highlightColor))
	c.Refresh()
}

// SetTransient replaces the drag preview outline.
func (c *AnnotationCanvas) SetTransient(r annotation.Rect) {
	c.transient = newOutline(r, transientColor)
	c.Refresh()
}

// ClearTransient removes the drag preview outline, if any.
func (c *AnnotationCanvas) ClearTransient() {
	if c.transient == nil {
		return
	}
	c.transient = nil
	c.Refresh()
}

// BoxCount returns the number of committed outlines on the canvas.
func (c *AnnotationCanvas) BoxCount() int {
	return len(c.boxes)
}

// HasTransient reports whether a drag preview is shown.
func (c *AnnotationCanvas) HasTransient() bool {
	return c.transient != nil
}

// Image returns the image currently shown, or nil.
func (c *AnnotationCanvas) Image() image.Image {
	return c.image.Image
}

func newOutline(r annotation.Rect, stroke color.Color) *canvas.Rectangle {
	o := canvas.NewRectangle(color.Transparent)
	o.StrokeColor = stroke
	o.StrokeWidth = boxStrokeWidth
	minX, maxX := order(r.X0, r.X1)
	minY, maxY := order(r.Y0, r.Y1)
	o.Move(fyne.NewPos(float32(minX), float32(minY)))
	o.Resize(fyne.NewSize(float32(maxX-minX), float32(maxY-minY)))
	return o
}

func order(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func toPoint(p fyne.Position) annotator.Point {
	return annotator.Point{
		X: int(math.Round(float64(p.X))),
		Y: int(math.Round(float64(p.Y))),
	}
}

// MouseDown starts a box.
func (c *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.dragging = true
	c.lastDrag = ev.Position
	if c.OnPress != nil {
		c.OnPress(toPoint(ev.Position))
	}
}

// MouseUp finishes the box at the release position.
func (c *AnnotationCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.release(ev.Position)
}

// Dragged reports pointer motion while the button is held.
func (c *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	c.lastDrag = ev.Position
	if c.OnDrag != nil {
		c.OnDrag(toPoint(ev.Position))
	}
}

// DragEnd finishes the box when the release happened outside the widget
// and no MouseUp was delivered.
func (c *AnnotationCanvas) DragEnd() {
	c.release(c.lastDrag)
}

func (c *AnnotationCanvas) release(pos fyne.Position) {
	if !c.dragging {
		return
	}
	c.dragging = false
	if c.OnRelease != nil {
		c.OnRelease(toPoint(pos))
	}
}

// CreateRenderer is a Fyne lifecycle method.
func (c *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &annotationCanvasRenderer{c: c}
}

type annotationCanvasRenderer struct{ c *AnnotationCanvas }

func (r *annotationCanvasRenderer) Layout(size fyne.Size) {
	r.c.background.Resize(size)
	r.c.image.Move(fyne.NewPos(0, 0))
	r.c.image.Resize(displaySize)
}

func (r *annotationCanvasRenderer) MinSize() fyne.Size { return displaySize }

func (r *annotationCanvasRenderer) Refresh() {
	r.Layout(r.c.Size())
	for _, o := range r.Objects() {
		canvas.Refresh(o)
	}
}

func (r *annotationCanvasRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(r.c.boxes)+3)
	objs = append(objs, r.c.background, r.c.image)
	for _, b := range r.c.boxes {
		objs = append(objs, b)
	}
	if r.c.transient != nil {
		objs = append(objs, r.c.transient)
	}
	return objs
}

func (r *annotationCanvasRenderer) Destroy() {}

var _ fyne.Widget = (*AnnotationCanvas)(nil)
var _ fyne.Draggable = (*AnnotationCanvas)(nil)
var _ desktop.Mouseable = (*AnnotationCanvas)(nil)
