package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	git "github.com/arourke/gogit"
	"github.com/arourke/gogit/internal/testutil"
	"github.com/stretchr/testify/require"
)

// newTestRepoCfg initializes a repository in a fresh temp dir and
// returns the globalFlags a command would see when invoked there.
func newTestRepoCfg(t *testing.T) *globalFlags {
	t.Helper()

	d, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	r, err := git.InitRepository(d)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	return &globalFlags{C: d}
}

func TestLoadRepository(t *testing.T) {
	t.Parallel()

	cfg := newTestRepoCfg(t)
	r, err := loadRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestLoadRepositoryMissing(t *testing.T) {
	t.Parallel()

	d, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	_, err := loadRepository(&globalFlags{C: d})
	require.Error(t, err)
}

func TestLoadRepositoryWalksUpFromSubdirectory(t *testing.T) {
	t.Parallel()

	cfg := newTestRepoCfg(t)
	sub := filepath.Join(cfg.C, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := loadRepository(&globalFlags{C: sub})
	require.NoError(t, err)
	require.NoError(t, r.Close())
}

func TestFprintlnQuiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fprintln(true, &buf, "hello")
	require.Empty(t, buf.String())

	fprintln(false, &buf, "hello")
	require.Equal(t, "hello\n", buf.String())
}
