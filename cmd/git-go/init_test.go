package main

import (
	"bytes"
	"path/filepath"
	"testing"

	git "github.com/arourke/gogit"
	"github.com/arourke/gogit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmdCreatesRepository(t *testing.T) {
	t.Parallel()

	d, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	var buf bytes.Buffer
	cfg := &globalFlags{C: d}
	require.NoError(t, initCmd(&buf, cfg, initCmdFlags{}, ""))
	assert.Contains(t, buf.String(), "Initialized empty Git repository")

	r, err := git.OpenRepository(d)
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestInitCmdReinitializesExistingRepository(t *testing.T) {
	t.Parallel()

	d, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	cfg := &globalFlags{C: d}
	var first bytes.Buffer
	require.NoError(t, initCmd(&first, cfg, initCmdFlags{}, ""))

	var second bytes.Buffer
	require.NoError(t, initCmd(&second, cfg, initCmdFlags{}, ""))
	assert.Contains(t, second.String(), "Reinitialized existing Git repository")
}

func TestInitCmdWithDirectoryArgument(t *testing.T) {
	t.Parallel()

	d, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	cfg := &globalFlags{C: d}
	var buf bytes.Buffer
	require.NoError(t, initCmd(&buf, cfg, initCmdFlags{}, "sub"))

	r, err := git.OpenRepository(filepath.Join(d, "sub"))
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestInitCmdRejectsUnsupportedInitialBranch(t *testing.T) {
	t.Parallel()

	d, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	var buf bytes.Buffer
	cfg := &globalFlags{C: d}
	err := initCmd(&buf, cfg, initCmdFlags{initialBranch: "trunk"}, "")
	require.Error(t, err)
}

func TestInitCmdQuiet(t *testing.T) {
	t.Parallel()

	d, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	var buf bytes.Buffer
	cfg := &globalFlags{C: d}
	require.NoError(t, initCmd(&buf, cfg, initCmdFlags{quiet: true}, ""))
	assert.Empty(t, buf.String())
}
