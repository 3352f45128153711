package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arourke/gogit/clone"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCloneCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <repository> [directory]",
		Short: "clone a repository into a new directory",
		Args:  cobra.RangeArgs(1, 2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		url := args[0]
		dir := ""
		if len(args) > 1 {
			dir = args[1]
		}
		return cloneCmd(cmd.OutOrStdout(), cfg, url, dir)
	}

	return cmd
}

func cloneCmd(out io.Writer, cfg *globalFlags, url, directory string) error {
	if directory == "" {
		directory = clone.DirectoryFromURL(url)
	}
	dest := filepath.Join(cfg.C, directory)

	if _, err := os.Stat(dest); err == nil {
		return xerrors.Errorf("destination path %q already exists and is not an empty directory", dest)
	}

	fmt.Fprintf(out, "Cloning into '%s'...\n", directory)

	c := clone.New(url, dest)
	if _, err := c.Run(context.Background()); err != nil {
		return xerrors.Errorf("could not clone %s: %w", url, err)
	}

	return nil
}
