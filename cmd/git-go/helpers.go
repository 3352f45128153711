package main

import (
	"fmt"
	"io"

	git "github.com/arourke/gogit"
	"github.com/arourke/gogit/internal/pathutil"
)

// loadRepository opens the repository containing cfg.C, walking up
// parent directories the way real git does when run from a
// subdirectory of the working tree.
func loadRepository(cfg *globalFlags) (*git.Repository, error) {
	root, err := pathutil.RepoRootFromPath(cfg.C)
	if err != nil {
		return nil, fmt.Errorf("could not find repository: %w", err)
	}

	r, err := git.OpenRepository(root)
	if err != nil {
		return nil, fmt.Errorf("could not open repository: %w", err)
	}
	return r, nil
}

func fprintln(quiet bool, out io.Writer, msg ...interface{}) {
	if !quiet {
		fmt.Fprintln(out, msg...)
	}
}

func fprintf(quiet bool, out io.Writer, format string, a ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format, a...)
	}
}
