// Package hotkey delivers global Ctrl+Shift+Space presses. Each press
// toggles recording; releases are not reported.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Presses() <-chan struct{}
}
