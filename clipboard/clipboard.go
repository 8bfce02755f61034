// Package clipboard delivers finished text to the user, either by
// copying it or by copying and injecting a paste keystroke into the
// focused window.
package clipboard

import cb "github.com/atotto/clipboard"

func Read() (string, error) {
	return cb.ReadAll()
}

func Copy(text string) error {
	return cb.WriteAll(text)
}
