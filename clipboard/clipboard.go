// Package clipboard delivers transcribed text to the system clipboard
// and optionally pastes it into the focused application.
package clipboard

import (
	cb "github.com/atotto/clipboard"

	"murmur/log"
)

func Copy(text string) error {
	return cb.WriteAll(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}

// Deliver copies text to the clipboard and, when autoPaste is set,
// sends the platform paste keystroke. A failed paste is not fatal: the
// text is already on the clipboard, so we log and move on.
func Deliver(text string, autoPaste bool) error {
	if err := Copy(text); err != nil {
		return err
	}
	if !autoPaste {
		return nil
	}
	if err := Paste(); err != nil {
		log.Warnf("auto-paste failed, text left on clipboard: %v", err)
	}
	return nil
}
