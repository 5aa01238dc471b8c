package ui

import (
	"os"
	"path/filepath"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const defaultAnnotationFile = "annotations.json"

func (a *App) buildStatusBar() *fyne.Container {
	a.UI.statusPathLabel = widget.NewLabel("No images loaded")
	a.UI.statusPathLabel.Truncation = fyne.TextTruncateEllipsis

	lm := a.logUIManager
	return container.NewVBox(
		widget.NewSeparator(),
		a.UI.statusPathLabel,
		container.NewBorder(nil, nil, nil, container.NewHBox(lm.upBtn, lm.downBtn), lm.label),
	)
}

func (a *App) buildMainMenu() *fyne.MainMenu {
	return fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Open Folder", a.openFolderDialog),
			fyne.NewMenuItem("Save Annotations", a.saveAnnotationsDialog),
			fyne.NewMenuItem("Load Annotations", a.loadAnnotationsDialog),
		),
		fyne.NewMenu("Image",
			fyne.NewMenuItem("Image Info", a.showImageInfo),
		),
		fyne.NewMenu("Help",
			fyne.NewMenuItem("Keyboard Shortcuts", a.showShortcuts),
			fyne.NewMenuItem("About", func() {
				NewAbout(&a.UI.MainWin, "About "+appTitle).Show()
			}),
		),
	)
}

func (a *App) buildMainUI() fyne.CanvasObject {
	a.UI.MainWin.SetMaster()
	// set main mod key to super on darwin hosts, else set it to ctrl
	if runtime.GOOS == "darwin" {
		a.UI.mainModKey = fyne.KeyModifierSuper
	} else {
		a.UI.mainModKey = fyne.KeyModifierControl
	}

	a.canvas = NewAnnotationCanvas()
	a.canvas.OnPress = a.startBox
	a.canvas.OnDrag = a.dragBox
	a.canvas.OnRelease = a.finishBox

	a.UI.MainWin.SetMainMenu(a.buildMainMenu())
	a.buildKeyboardShortcuts()

	return container.NewBorder(
		nil,                // Top
		a.buildStatusBar(), // Bottom
		nil,                // Left
		nil,                // Right
		container.NewStack(a.canvas),
	)
}

// startLocation returns a folder for a dialog to open in, or nil.
func startLocation(dir string) fyne.ListableURI {
	if dir == "" {
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return lister
}

func (a *App) openFolderDialog() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if uri == nil {
			return // cancelled
		}
		a.openFolder(uri.Path())
	}, a.UI.MainWin)
	if loc := startLocation(a.annotator.Dir()); loc != nil {
		d.SetLocation(loc)
	}
	d.Show()
}

func (a *App) saveAnnotationsDialog() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if w == nil {
			return // cancelled
		}
		path := w.URI().Path()
		w.Close()
		if filepath.Ext(path) == "" {
			// The dialog already created the extensionless file; the store is
			// written next to it with the default extension instead.
			os.Remove(path)
		}
		if err := a.saveAnnotations(path); err != nil {
			a.showError(err)
		}
	}, a.UI.MainWin)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	name := defaultAnnotationFile
	if last := a.Service.LastAnnotations(); last != "" {
		name = filepath.Base(last)
		if loc := startLocation(filepath.Dir(last)); loc != nil {
			d.SetLocation(loc)
		}
	}
	d.SetFileName(name)
	d.Show()
}

func (a *App) loadAnnotationsDialog() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if r == nil {
			return // cancelled
		}
		path := r.URI().Path()
		r.Close()
		if err := a.loadAnnotations(path); err != nil {
			a.showError(err)
		}
	}, a.UI.MainWin)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if last := a.Service.LastAnnotations(); last != "" {
		if loc := startLocation(filepath.Dir(last)); loc != nil {
			d.SetLocation(loc)
		}
	}
	d.Show()
}
