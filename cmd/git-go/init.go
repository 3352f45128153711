package main

import (
	"errors"
	"io"
	"path/filepath"

	git "github.com/arourke/gogit"
	"github.com/spf13/cobra"
)

// initCmdFlags represents the flags accepted by the init command
//
// Reference: https://git-scm.com/docs/git-init#_options
type initCmdFlags struct {
	initialBranch string
	quiet         bool
}

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "init a new git repository",
		Long:  "This command creates an empty Git repository - basically a .git directory with subdirectories for objects and refs/heads. An initial branch without any commits will be created (see the --initial-branch option below for its name).\n\nRunning git init in an existing repository is safe. It will not overwrite things that are already there.",
		Args:  cobra.MaximumNArgs(1),
	}

	flags := initCmdFlags{}
	cmd.Flags().StringVarP(&flags.initialBranch, "initial-branch", "b", "", "Use the specified name for the initial branch in the newly created repository. If not specified, fall back to the default name (currently master).")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only print error and warning messages; all other output will be suppressed.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		directory := ""
		if len(args) > 0 {
			directory = args[0]
		}
		return initCmd(cmd.OutOrStdout(), cfg, flags, directory)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *globalFlags, flags initCmdFlags, optionalDirectory string) error {
	if flags.initialBranch != "" && flags.initialBranch != "master" {
		return errors.New("git-go does not support overriding the initial branch name yet")
	}

	workingDirectory := cfg.C
	if optionalDirectory != "" {
		workingDirectory = filepath.Join(cfg.C, optionalDirectory)
	}

	// Check whether the repo already exists before running init, since
	// InitRepository fails with ErrRepositoryExists on a re-init.
	newRepo := true
	if existing, err := git.OpenRepository(workingDirectory); err == nil {
		newRepo = false
		_ = existing.Close()
	}

	r, err := git.InitRepository(workingDirectory)
	if errors.Is(err, git.ErrRepositoryExists) {
		r, err = git.OpenRepository(workingDirectory)
	}
	if err != nil {
		return err
	}

	switch newRepo {
	case true:
		fprintln(flags.quiet, out, "Initialized empty Git repository in", r.Path())
	case false:
		fprintln(flags.quiet, out, "Reinitialized existing Git repository in", r.Path())
	}

	return r.Close()
}
