package main

import (
	"fmt"
	"io"

	"github.com/arourke/gogit/ginternals/object"
	"github.com/arourke/gogit/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newLSTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree TREE-ISH",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	nameOnly := cmd.Flags().Bool("name-only", false, "List only filenames instead of the mode/type/sha triplet.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsTreeCmd(cmd.OutOrStdout(), cfg, args[0], *nameOnly)
	}
	return cmd
}

func lsTreeCmd(out io.Writer, cfg *globalFlags, treeish string, nameOnly bool) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := resolveObjectName(r, treeish)
	if err != nil {
		return err
	}

	o, err := r.GetObject(oid)
	if err != nil {
		return xerrors.Errorf("could not load %s: %w", treeish, err)
	}
	treeID := oid
	if o.Type() == object.TypeCommit {
		c, err := o.AsCommit()
		if err != nil {
			return xerrors.Errorf("could not parse commit %s: %w", treeish, err)
		}
		treeID = c.TreeID()
	}

	tree, err := r.GetTree(treeID)
	if err != nil {
		return xerrors.Errorf("could not load tree %s: %w", treeish, err)
	}

	for _, e := range tree.Entries() {
		if nameOnly {
			fmt.Fprintln(out, e.Path)
			continue
		}
		fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), e.Path)
	}
	return nil
}
