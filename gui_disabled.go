//go:build !gui

package main

import (
	"murmur/indicator"
	"murmur/settings"
)

func initGUI() {
	panic("murmur: built without GUI support (rebuild with -tags gui)")
}

func indicatorSurface(*settings.Store) indicator.Surface {
	return noopSurface{}
}

func guiSinkIfEnabled() DisplaySink {
	return nil
}
