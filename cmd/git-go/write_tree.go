package main

import (
	"fmt"
	"io"

	"github.com/arourke/gogit/ginternals/localtree"
	"github.com/arourke/gogit/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newWriteTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "Create a tree object from the working directory",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeTreeCmd(cmd.OutOrStdout(), cfg)
	}
	return cmd
}

// writeTreeCmd hashes the repository's working directory, the way
// git-go has no staging index to read entries from instead.
func writeTreeCmd(out io.Writer, cfg *globalFlags) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	tree, err := localtree.WriteTree(r, r.RepoRoot())
	if err != nil {
		return xerrors.Errorf("could not write tree: %w", err)
	}

	fmt.Fprintln(out, tree.ID().String())
	return nil
}
