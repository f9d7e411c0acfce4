package main

import (
	"fmt"
	"path/filepath"

	"mangaview/internal/archive"
	"mangaview/internal/errors"
	"mangaview/internal/imaging"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewListCmd prints the page order of an archive.
func NewListCmd() *cobra.Command {
	var types bool

	cmd := &cobra.Command{
		Use:   "list <archive.zip>",
		Short: "Print the pages of an archive in reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := archive.OpenFile(args[0], archive.WithExtensions(cfg.Archive.Extensions...))
			if err != nil {
				return err
			}
			pages := idx.ImageEntryNames()
			if pages.Len() == 0 {
				return errors.NewEmptyArchiveError(args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d pages (%d entries, %s)\n",
				filepath.Base(args[0]), pages.Len(), idx.Entries(), humanize.Bytes(uint64(idx.Size())))
			for i, name := range pages {
				size := "?"
				if n, ok := idx.UncompressedSize(name); ok {
					size = humanize.Bytes(n)
				}
				if !types {
					fmt.Fprintf(out, "%4d  %-40s %8s\n", i+1, name, size)
					continue
				}
				kind := "unreadable"
				if data, err := idx.Entry(name); err == nil {
					kind = imaging.Sniff(data)
				}
				fmt.Fprintf(out, "%4d  %-40s %8s  %s\n", i+1, name, size, kind)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&types, "types", "t", false, "sniff each page and print its content type")
	return cmd
}
