package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

const (
	// DisplayWidth and DisplayHeight are the fixed canvas dimensions every
	// image is resized to. Aspect ratio is not preserved.
	DisplayWidth  = 512
	DisplayHeight = 512
)

// exifFields are the tags reported in ImageInfo.EXIFData, in display order.
var exifFields = []exif.FieldName{
	exif.Make, exif.Model, exif.DateTime,
	exif.ExposureTime, exif.FNumber, exif.ISOSpeedRatings, exif.FocalLength,
}

// ImageInfo holds metadata about an image file.
type ImageInfo struct {
	Width    int
	Height   int
	Size     int64
	ModTime  time.Time
	EXIFData map[string]string // nil when the file carries no EXIF block
}

// Camera returns "Make Model" from EXIF, or "" when neither is present.
func (info *ImageInfo) Camera() string {
	return strings.TrimSpace(info.EXIFData[string(exif.Make)] + " " + info.EXIFData[string(exif.Model)])
}

// Details renders the metadata as "Label: value" lines for the info dialog
// and the CLI.
func (info *ImageInfo) Details() []string {
	lines := []string{
		fmt.Sprintf("Dimensions: %dx%d px", info.Width, info.Height),
		fmt.Sprintf("File size: %d bytes", info.Size),
		fmt.Sprintf("Modified: %s", info.ModTime.Format(time.DateTime)),
	}
	for _, field := range exifFields {
		if v, ok := info.EXIFData[string(field)]; ok {
			lines = append(lines, fmt.Sprintf("%s: %s", field, v))
		}
	}
	return lines
}

// ImageService provides image loading and metadata extraction.
type ImageService struct {
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ReadEXIF returns the known EXIF fields found in r. Files without EXIF,
// such as most PNGs, yield nil.
func ReadEXIF(r io.Reader) map[string]string {
	x, err := exif.Decode(r)
	if err != nil {
		return nil
	}
	fields := make(map[string]string)
	for _, name := range exifFields {
		tag, err := x.Get(name)
		if err != nil || tag == nil {
			continue
		}
		value := tag.String()
		if s, err := tag.StringVal(); err == nil {
			value = strings.TrimRight(s, "\x00 ")
		}
		fields[string(name)] = value
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// GetImageInfo reads path once and returns its metadata together with the
// decoded image at native resolution.
func (is *ImageService) GetImageInfo(path string) (*ImageInfo, image.Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Size:     fi.Size(),
		ModTime:  fi.ModTime(),
		EXIFData: ReadEXIF(bytes.NewReader(data)),
	}, img, nil
}

// Display loads path and resizes it to DisplayWidth x DisplayHeight. The
// returned info describes the file on disk, not the resized image.
func (is *ImageService) Display(path string) (image.Image, *ImageInfo, error) {
	info, img, err := is.GetImageInfo(path)
	if err != nil {
		return nil, nil, err
	}
	return Resize(img), info, nil
}

// Resize scales img to the display size.
func Resize(img image.Image) *image.NRGBA {
	return imaging.Resize(img, DisplayWidth, DisplayHeight, imaging.Lanczos)
}
