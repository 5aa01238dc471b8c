package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyannotate/internal/annotator"

	"fyne.io/fyne/v2/dialog"
)

// showFrame decodes the frame's image at display size and redraws it with
// its boxes, replacing whatever the canvas showed before.
func (a *App) showFrame(frame annotator.Frame) {
	img, info, err := a.Service.Images.Display(frame.Path)
	if err != nil {
		a.handleImageDisplayError(frame.Path, err)
		return
	}
	a.current = info
	a.canvas.SetFrame(img, frame.Rects)
	a.UI.MainWin.SetTitle(fmt.Sprintf("%s - %s", appTitle, frame.Filename))
	a.updateStatusBar()
}

// handleImageDisplayError clears the canvas and reports an image that could
// not be loaded or decoded.
func (a *App) handleImageDisplayError(imagePath string, err error) {
	a.current = nil
	a.canvas.SetFrame(nil, nil)
	a.UI.MainWin.SetTitle(fmt.Sprintf("%s - Error loading %s", appTitle, filepath.Base(imagePath)))
	a.showError(err)
	a.updateStatusBar()
}

// showImageInfo shows the metadata of the current image.
func (a *App) showImageInfo() {
	frame, ok := a.annotator.Frame()
	if !ok || a.current == nil {
		dialog.ShowInformation("Image Info", "No image loaded", a.UI.MainWin)
		return
	}
	text := frame.Path + "\n\n" + strings.Join(a.current.Details(), "\n")
	dialog.ShowInformation("Image Info", text, a.UI.MainWin)
}

// showError logs err and shows it in a dialog.
func (a *App) showError(err error) {
	a.logger.Error().Err(err).Msg("operation failed")
	a.logUIManager.record(fmt.Sprintf("Error: %v", err))
	dialog.ShowError(err, a.UI.MainWin)
}

// updateStatusBar updates the text of the status bar.
func (a *App) updateStatusBar() {
	if a.UI.statusPathLabel == nil {
		return
	}
	frame, ok := a.annotator.Frame()
	if !ok {
		a.UI.statusPathLabel.SetText("No images loaded")
		return
	}
	status := fmt.Sprintf("%s  |  Image %d / %d  |  %s",
		frame.Path, frame.Index+1, a.annotator.Len(), pluralBoxes(len(frame.Rects)))
	if a.current != nil {
		status += fmt.Sprintf("  |  %dx%d px", a.current.Width, a.current.Height)
		if camera := a.current.Camera(); camera != "" {
			status += "  |  " + camera
		}
	}
	a.UI.statusPathLabel.SetText(status)
}

func pluralBoxes(n int) string {
	if n == 1 {
		return "1 box"
	}
	return fmt.Sprintf("%d boxes", n)
}
