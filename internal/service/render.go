package service

import (
	"image"
	"image/color"

	"fyannotate/internal/annotation"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// BoxColor is the outline color of committed boxes.
var BoxColor = color.NRGBA{R: 0xff, A: 0xff}

// Render loads path at display size and draws rects on it as one pixel
// outlines, the same picture the annotation canvas shows.
func (is *ImageService) Render(path string, rects []annotation.Rect) (*image.NRGBA, error) {
	img, _, err := is.Display(path)
	if err != nil {
		return nil, err
	}
	dst := imaging.Clone(img)
	for _, r := range rects {
		DrawOutline(dst, r, BoxColor)
	}
	return dst, nil
}

// DrawOutline draws the border of r on dst. Corners may be given in any
// order; parts outside dst are clipped.
func DrawOutline(dst draw.Image, r annotation.Rect, c color.Color) {
	src := image.NewUniform(c)
	box := image.Rect(r.X0, r.Y0, r.X1, r.Y1) // canonicalized
	edges := []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X+1, box.Min.Y+1), // top
		image.Rect(box.Min.X, box.Max.Y, box.Max.X+1, box.Max.Y+1), // bottom
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+1, box.Max.Y+1), // left
		image.Rect(box.Max.X, box.Min.Y, box.Max.X+1, box.Max.Y+1), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}
