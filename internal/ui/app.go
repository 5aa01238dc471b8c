// Package ui  Setup for the FyAnnotate Application
package ui

import (
	"fmt"
	"path/filepath"

	"fyannotate/internal/annotator"
	"fyannotate/internal/logging"
	"fyannotate/internal/scan"
	"fyannotate/internal/service"
	"fyannotate/internal/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

const appTitle = "FyAnnotate"

// Options configure CreateApplication.
type Options struct {
	Dir         string // folder to open at start
	Annotations string // annotation file to load at start
	DBPath      string // session database, "" for the default location
	Restore     bool   // reopen the last folder at its last image when Dir is empty
	Logger      zerolog.Logger
}

// UI holds the widgets the App updates after each action.
type UI struct {
	MainWin         fyne.Window
	mainModKey      fyne.KeyModifier
	statusPathLabel *widget.Label
}

// App represents the whole application with all its windows, widgets and functions
type App struct {
	app fyne.App
	UI  UI

	annotator    *annotator.Annotator
	canvas       *AnnotationCanvas
	current      *service.ImageInfo
	logger       zerolog.Logger
	logUIManager *LogUIManager
	Service      *service.Service
}

// newApp builds the App and its window on top of fyneApp. svc must not be nil.
func newApp(fyneApp fyne.App, svc *service.Service, logger zerolog.Logger) *App {
	a := &App{
		app:       fyneApp,
		annotator: annotator.New(svc),
		logger:    logger,
		Service:   svc,
	}
	a.logUIManager = NewLogUIManager(DefaultMaxLogMessages, logging.Func(logger, "ui"))
	a.UI.MainWin = fyneApp.NewWindow(appTitle)
	a.UI.MainWin.SetContent(a.buildMainUI())
	return a
}

// addLogMessage adds a message to the UI log display.
func (a *App) addLogMessage(message string) {
	a.logUIManager.Add(message)
}

// openFolder loads the image set of dir and shows its first image.
func (a *App) openFolder(dir string) {
	frame, ok, err := a.annotator.OpenFolder(dir)
	if err != nil {
		a.showError(fmt.Errorf("unable to open folder %s: %w", dir, err))
		return
	}
	a.Service.RecordFolder(dir)
	a.Service.RecordIndex(dir, 0)
	a.addLogMessage(fmt.Sprintf("Opened %s: %d images", dir, a.annotator.Len()))
	if ok {
		a.showFrame(frame)
	}
	a.updateStatusBar()
}

// seek moves to index in the current folder, used when restoring a session.
func (a *App) seek(index int) {
	if frame, ok := a.annotator.Seek(index); ok {
		a.showFrame(frame)
	}
}

func (a *App) nextImage() {
	if frame, ok := a.annotator.Next(); ok {
		a.showFrame(frame)
		a.Service.RecordIndex(a.annotator.Dir(), a.annotator.Index())
	}
}

func (a *App) prevImage() {
	if frame, ok := a.annotator.Prev(); ok {
		a.showFrame(frame)
		a.Service.RecordIndex(a.annotator.Dir(), a.annotator.Index())
	}
}

func (a *App) startBox(p annotator.Point) {
	a.annotator.Press(p)
}

func (a *App) dragBox(p annotator.Point) {
	if r, ok := a.annotator.Drag(p); ok {
		a.canvas.SetTransient(r)
	}
}

func (a *App) finishBox(p annotator.Point) {
	r, ok := a.annotator.Release(p)
	a.canvas.ClearTransient()
	if !ok {
		return
	}
	a.canvas.AddBox(r)
	a.updateStatusBar()
}

// saveAnnotations writes the store to path. A path without extension gets ".json".
func (a *App) saveAnnotations(path string) error {
	if filepath.Ext(path) == "" {
		path += ".json"
	}
	if err := a.annotator.SaveAnnotations(path); err != nil {
		return err
	}
	a.addLogMessage(fmt.Sprintf("Saved annotations to %s", path))
	return nil
}

// loadAnnotations replaces the store with the contents of path and redraws
// the current image.
func (a *App) loadAnnotations(path string) error {
	frame, ok, err := a.annotator.LoadAnnotations(path)
	if err != nil {
		return err
	}
	a.addLogMessage(fmt.Sprintf("Loaded annotations from %s", path))
	if ok {
		a.showFrame(frame)
	}
	a.updateStatusBar()
	return nil
}

// start applies Options once the window exists.
func (a *App) start(opts Options) {
	switch {
	case opts.Dir != "":
		a.openFolder(opts.Dir)
	case opts.Restore:
		if dir, index, ok := a.Service.RestorePoint(); ok {
			a.openFolder(dir)
			a.seek(index)
			a.Service.RecordIndex(dir, a.annotator.Index())
		}
	}
	if opts.Annotations != "" {
		if err := a.loadAnnotations(opts.Annotations); err != nil {
			a.showError(err)
		}
	}
	a.updateStatusBar()
}

// CreateApplication is the GUI entrypoint
func CreateApplication(opts Options) {
	logger := opts.Logger

	fyneApp := app.NewWithID("com.github.fyannotate")

	var sessionDB *session.DB
	db, err := session.Open(opts.DBPath, logging.Func(logger, "session"))
	if err != nil {
		// The annotator works without a session, it just forgets where it was.
		logger.Warn().Err(err).Msg("session database unavailable")
	} else {
		sessionDB = db
	}

	var store service.SessionStore
	if sessionDB != nil {
		store = sessionDB
	}
	svc := service.NewService(store, scan.FileScannerImpl{}, logging.Func(logger, "service"))

	ui := newApp(fyneApp, svc, logger)
	ui.UI.MainWin.SetCloseIntercept(func() {
		if sessionDB != nil {
			logger.Debug().Msg("closing session database")
			if err := sessionDB.Close(); err != nil {
				logger.Error().Err(err).Msg("error closing session database")
			}
		}
		ui.UI.MainWin.Close()
	})

	ui.start(opts)

	ui.UI.MainWin.Resize(fyne.NewSize(displaySize.Width+40, displaySize.Height+120))
	ui.UI.MainWin.CenterOnScreen()
	ui.UI.MainWin.ShowAndRun()
}
