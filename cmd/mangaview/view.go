package main

import (
	"fmt"

	"mangaview/internal/gui"
	"mangaview/internal/tui"

	"github.com/spf13/cobra"
)

// NewGUICmd opens the desktop window.
func NewGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui [archive.zip]",
		Short: "Open an archive in a window",
		Long:  `Open the desktop viewer. Without an argument the window starts empty; use the open button to pick a .zip file.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gui.IsAvailable() {
				return fmt.Errorf("this build has no GUI; use 'mangaview tui'")
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return gui.Run(cfg, cfgPath, path)
		},
	}
}

// NewTUICmd opens the terminal reader.
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <archive.zip>",
		Short: "Read an archive in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cfg, args[0])
		},
	}
}
