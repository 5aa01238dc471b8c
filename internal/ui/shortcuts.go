// Package ui  Shortcuts for keyboard actions
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// shortcutRows lists the key bindings shown in the help window.
var shortcutRows = [][2]string{
	{"Next Image", "Arrow Right"},
	{"Previous Image", "Arrow Left"},
	{"Draw Box", "Press, drag and release on the image"},
	{"Image Info", "I"},
	{"Quit Application", "Ctrl+Q"},
	{"Close Dialog", "Esc"},
}

func (a *App) buildKeyboardShortcuts() {
	// ctrl+q to quit application
	a.UI.MainWin.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyQ,
		Modifier: a.UI.mainModKey,
	}, func(_ fyne.Shortcut) { a.app.Quit() })

	a.UI.MainWin.Canvas().SetOnTypedKey(a.handleKey)
}

func (a *App) handleKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeyRight:
		a.nextImage()
	case fyne.KeyLeft:
		a.prevImage()
	case fyne.KeyI:
		a.showImageInfo()
	// close dialogs with esc key
	case fyne.KeyEscape:
		if len(a.UI.MainWin.Canvas().Overlays().List()) > 0 {
			a.UI.MainWin.Canvas().Overlays().Top().Hide()
		}
	}
}

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}
	return falseVal
}

func (a *App) showShortcuts() {
	win := a.app.NewWindow("Keyboard Shortcuts")
	table := widget.NewTable(
		func() (int, int) { return len(shortcutRows) + 1, 2 }, // +1 for header row
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			isHeader := id.Row == 0
			if isHeader {
				label.SetText(ternary(id.Col == 0, "Description", "Shortcut"))
			} else {
				label.SetText(shortcutRows[id.Row-1][id.Col])
			}
			label.TextStyle.Bold = isHeader
		},
	)
	table.SetColumnWidth(0, 180)
	table.SetColumnWidth(1, 320)
	win.SetContent(table)
	win.Resize(fyne.NewSize(500, 240))
	win.Show()
}
