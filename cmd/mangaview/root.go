package main

import (
	"fmt"

	"mangaview/internal/clipboard"
	"mangaview/internal/config"
	"mangaview/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfgPath string
	debug   bool
	cfg     *config.Config

	// newClipboard is swapped out by tests.
	newClipboard = func() clipboard.Writer { return clipboard.NewSystem() }
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mangaview",
		Short: "A paged image viewer for ZIP archives",
		Long: `mangaview shows the images inside a ZIP archive one page at a time,
in natural page order, with a thumbnail strip and copy-to-clipboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mangaview/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewGUICmd())
	rootCmd.AddCommand(NewTUICmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewCopyCmd())

	return rootCmd
}

// loadConfig reads the config file and configures the package logger from it.
func loadConfig() error {
	cfgPath = cfgFile
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			log.Warnf("cannot locate config directory: %v", err)
		}
		cfgPath = p
	}

	var err error
	if cfgPath != "" {
		cfg, err = config.LoadConfigFile(cfgPath)
	} else {
		cfg = config.New()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := []log.Option{log.WithLevel(cfg.Log.Level)}
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	log.SetDefault(log.NewLogger(opts...))
	if debug {
		log.SetDebug(true)
	}
	log.Debugf("using config %s", cfgPath)
	return nil
}
