package main

import (
	"context"
	"fmt"

	"mangaview/internal/resource"
	"mangaview/internal/viewer"

	"github.com/spf13/cobra"
)

// discardSurface drops assigned pages; the copy command has nothing to show.
type discardSurface struct{}

func (discardSurface) AssignImage(*resource.Handle) {}
func (discardSurface) ClearImage(string)            {}

// NewCopyCmd copies one page to the clipboard as PNG.
func NewCopyCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "copy <archive.zip>",
		Short: "Copy a page image to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			v := viewer.New(discardSurface{},
				viewer.WithConfig(cfg),
				viewer.WithClipboard(newClipboard()),
			)
			defer v.Close()

			if err := v.SetFile(ctx, args[0]); err != nil {
				return err
			}
			if n := v.Pages().Len(); page < 1 || page > n {
				return fmt.Errorf("page %d out of range (archive has %d pages)", page, n)
			}
			if err := v.ShowPage(ctx, page-1); err != nil {
				return err
			}
			if err := v.CopyCurrent(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied page %d (%s) to clipboard\n", page, v.State().Name)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to copy, starting at 1")
	return cmd
}
