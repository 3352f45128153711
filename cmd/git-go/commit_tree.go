package main

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/ginternals/object"
	"github.com/arourke/gogit/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newCommitTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-tree TREE",
		Short: "Create a new commit object from a tree",
		Args:  cobra.ExactArgs(1),
	}

	message := cmd.Flags().StringP("message", "m", "", "A paragraph in the commit log message.")
	parents := cmd.Flags().StringArrayP("parent", "p", nil, "Each -p indicates the id of a parent commit object.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitTreeCmd(cmd.OutOrStdout(), cfg, args[0], *message, *parents)
	}
	return cmd
}

func commitTreeCmd(out io.Writer, cfg *globalFlags, treeName, message string, parentNames []string) (err error) {
	treeID, err := ginternals.NewOidFromStr(treeName)
	if err != nil {
		return xerrors.Errorf("not a valid tree object %s: %w", treeName, err)
	}

	parentIDs := make([]ginternals.Oid, 0, len(parentNames))
	for _, p := range parentNames {
		id, err := ginternals.NewOidFromStr(p)
		if err != nil {
			return xerrors.Errorf("not a valid commit object %s: %w", p, err)
		}
		parentIDs = append(parentIDs, id)
	}

	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	author := currentUserSignature()
	c, err := r.NewCommit(treeID, author, &object.CommitOptions{
		Message:   message,
		ParentsID: parentIDs,
	})
	if err != nil {
		return xerrors.Errorf("could not write commit: %w", err)
	}

	fmt.Fprintln(out, c.ID().String())
	return nil
}

func currentUserSignature() object.Signature {
	name := "git-go"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return object.NewSignature(name, fmt.Sprintf("%s@%s", name, host))
}
