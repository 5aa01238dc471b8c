package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// DefaultMaxLogMessages bounds the history kept for the status log line.
const DefaultMaxLogMessages = 100

// LogUIManager keeps recent messages and shows one of them in the status bar.
// The up/down buttons browse older and newer entries.
type LogUIManager struct {
	messages []string
	current  int
	max      int
	sink     func(string) // also receives every message, e.g. the console logger

	label   *widget.Label
	upBtn   *widget.Button
	downBtn *widget.Button
}

// NewLogUIManager builds the status log line widgets.
func NewLogUIManager(maxMessages int, sink func(string)) *LogUIManager {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxLogMessages
	}
	lm := &LogUIManager{
		messages: make([]string, 0, maxMessages),
		current:  -1,
		max:      maxMessages,
		sink:     sink,
		label:    widget.NewLabel(""),
	}
	lm.label.Truncation = fyne.TextTruncateEllipsis
	lm.upBtn = widget.NewButtonWithIcon("", theme.MoveUpIcon(), lm.ShowPrevious)
	lm.downBtn = widget.NewButtonWithIcon("", theme.MoveDownIcon(), lm.ShowNext)
	lm.refresh()
	return lm
}

// Add appends message and shows it.
func (lm *LogUIManager) Add(message string) {
	if lm.sink != nil {
		lm.sink(message)
	}
	lm.record(message)
}

// record shows message without forwarding it to the sink.
func (lm *LogUIManager) record(message string) {
	lm.messages = append(lm.messages, message)
	if len(lm.messages) > lm.max {
		lm.messages = lm.messages[len(lm.messages)-lm.max:]
	}
	lm.current = len(lm.messages) - 1
	lm.refresh()
}

// Messages returns the retained history, oldest first.
func (lm *LogUIManager) Messages() []string {
	out := make([]string, len(lm.messages))
	copy(out, lm.messages)
	return out
}

// ShowPrevious moves to the older message.
func (lm *LogUIManager) ShowPrevious() {
	if lm.current <= 0 {
		return
	}
	lm.current--
	lm.refresh()
}

// ShowNext moves to the newer message.
func (lm *LogUIManager) ShowNext() {
	if lm.current >= len(lm.messages)-1 {
		return
	}
	lm.current++
	lm.refresh()
}

func (lm *LogUIManager) refresh() {
	if len(lm.messages) == 0 {
		lm.label.SetText("")
		lm.upBtn.Disable()
		lm.downBtn.Disable()
		return
	}
	lm.label.SetText(fmt.Sprintf("[%d/%d] %s", lm.current+1, len(lm.messages), lm.messages[lm.current]))
	if lm.current <= 0 {
		lm.upBtn.Disable()
	} else {
		lm.upBtn.Enable()
	}
	if lm.current >= len(lm.messages)-1 {
		lm.downBtn.Disable()
	} else {
		lm.downBtn.Enable()
	}
}
