//go:build nogui
// +build nogui

package gui

import (
	"fmt"

	"mangaview/internal/config"
)

// Run is a stub for builds with the GUI disabled.
func Run(cfg *config.Config, cfgPath, path string) error {
	fmt.Println("GUI is disabled in this build. Please use the tui command.")
	return fmt.Errorf("GUI not available in this build")
}

// IsAvailable reports whether the GUI is available in this build.
func IsAvailable() bool {
	return false
}
