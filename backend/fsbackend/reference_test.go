package fsbackend

import (
	"path/filepath"
	"testing"

	"github.com/arourke/gogit/backend"
	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/internal/gitpath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func newRefTestBackend(t *testing.T) *Backend {
	t.Helper()

	fs := afero.NewMemMapFs()
	b, err := New(filepath.Join("/repo", gitpath.DotGitPath), fs)
	require.NoError(t, err)
	require.NoError(t, b.Init())
	return b
}

func TestReference(t *testing.T) {
	t.Parallel()

	t.Run("should fail if reference doesn't exist", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		ref, err := b.Reference("refs/heads/doesnt_exists")
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ginternals.ErrRefNotFound), "unexpected error returned")
		assert.Nil(t, ref)
	})

	t.Run("should follow a symbolic ref", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)

		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", target)))
		require.NoError(t, b.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, "refs/heads/master")))

		ref, err := b.Reference(ginternals.Head)
		require.NoError(t, err)
		require.NotNil(t, ref)

		assert.Equal(t, ginternals.Head, ref.Name())
		assert.Equal(t, "refs/heads/master", ref.SymbolicTarget())
		assert.Equal(t, target, ref.Target())
	})

	t.Run("should follow an oid ref", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)

		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", target)))

		ref, err := b.Reference("refs/heads/master")
		require.NoError(t, err)
		require.NotNil(t, ref)

		assert.Equal(t, "refs/heads/master", ref.Name())
		assert.Empty(t, ref.SymbolicTarget())
		assert.Equal(t, target, ref.Target())
	})
}

func TestWriteReferenceCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	b := newRefTestBackend(t)
	target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
	require.NoError(t, err)

	// refs/heads and refs/tags are pre-created by Init, but a ref
	// nested under a directory neither of those covers (mirroring a
	// branch name like "feature/x", or a non-heads/tags namespace such
	// as refs/remotes) has no parent directory to write into yet.
	ref := ginternals.NewReference("refs/heads/feature/x", target)
	require.NoError(t, b.WriteReference(ref))

	got, err := b.Reference("refs/heads/feature/x")
	require.NoError(t, err)
	assert.Equal(t, target, got.Target())
}

func TestWriteReferenceSafe(t *testing.T) {
	t.Parallel()

	t.Run("should fail if the reference already exists on disk", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)

		ref := ginternals.NewReference("refs/heads/master", target)
		require.NoError(t, b.WriteReference(ref))

		err = b.WriteReferenceSafe(ref)
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ginternals.ErrRefExists))
	})

	t.Run("should fail if the reference already exists in packed-refs", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		packedRefsPath := filepath.Join(b.root, gitpath.PackedRefsPath)
		data := "bbb720a96e4c29b9950a4c577c98470a4d5dd089 refs/heads/master\n"
		require.NoError(t, afero.WriteFile(b.fs, packedRefsPath, []byte(data), 0o644))

		target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)
		err = b.WriteReferenceSafe(ginternals.NewReference("refs/heads/master", target))
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ginternals.ErrRefExists))
	})

	t.Run("should succeed for a brand new reference", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		target, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)

		err = b.WriteReferenceSafe(ginternals.NewReference("refs/heads/feature", target))
		require.NoError(t, err)

		ref, err := b.Reference("refs/heads/feature")
		require.NoError(t, err)
		assert.Equal(t, target, ref.Target())
	})
}

func TestParsePackedRefs(t *testing.T) {
	t.Parallel()

	t.Run("should return an empty list if no file", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)

		data, err := b.parsePackedRefs()
		require.NoError(t, err)
		assert.NotNil(t, data)
		assert.Empty(t, data)
	})

	t.Run("should fail if file contains invalid data", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		fPath := filepath.Join(b.root, gitpath.PackedRefsPath)
		require.NoError(t, afero.WriteFile(b.fs, fPath, []byte("not valid data"), 0o644))

		_, err := b.parsePackedRefs()
		require.Error(t, err)
		assert.True(t, xerrors.Is(err, ginternals.ErrPackedRefInvalid), "unexpected error received")
	})

	t.Run("should pass with comments and annotations", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		fPath := filepath.Join(b.root, gitpath.PackedRefsPath)
		data := "^de111c003b5661db802f17ac69419dcb9f4f3137\n# this is a comment"
		require.NoError(t, afero.WriteFile(b.fs, fPath, []byte(data), 0o644))

		_, err := b.parsePackedRefs()
		require.NoError(t, err)
	})

	t.Run("should correctly extract data", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		fPath := filepath.Join(b.root, gitpath.PackedRefsPath)
		data := "bbb720a96e4c29b9950a4c577c98470a4d5dd089 refs/heads/master\n" +
			"f0f70144f38695250606b86a50cff2b440a417f3 refs/heads/ml/tests\n"
		require.NoError(t, afero.WriteFile(b.fs, fPath, []byte(data), 0o644))

		parsed, err := b.parsePackedRefs()
		require.NoError(t, err)
		expected := map[string]string{
			"refs/heads/master":   "bbb720a96e4c29b9950a4c577c98470a4d5dd089",
			"refs/heads/ml/tests": "f0f70144f38695250606b86a50cff2b440a417f3",
		}
		assert.Equal(t, expected, parsed)
	})
}

func TestWalkReferences(t *testing.T) {
	t.Parallel()

	t.Run("walks loose and packed references without duplicates", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		master, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)
		feature, err := ginternals.NewOidFromStr("f0f70144f38695250606b86a50cff2b440a417f3")
		require.NoError(t, err)

		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", master)))
		require.NoError(t, b.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, "refs/heads/master")))

		packedRefsPath := filepath.Join(b.root, gitpath.PackedRefsPath)
		packed := "f0f70144f38695250606b86a50cff2b440a417f3 refs/heads/feature\n" +
			// a stale packed entry overridden by the loose ref above
			"0000000000000000000000000000000000000000 refs/heads/master\n"
		require.NoError(t, afero.WriteFile(b.fs, packedRefsPath, []byte(packed), 0o644))

		seen := map[string]ginternals.Oid{}
		err = b.WalkReferences(func(ref *ginternals.Reference) error {
			seen[ref.Name()] = ref.Target()
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, master, seen["refs/heads/master"])
		assert.Equal(t, feature, seen["refs/heads/feature"])
		assert.Equal(t, master, seen[ginternals.Head])
	})

	t.Run("stops early when f returns WalkStop", func(t *testing.T) {
		t.Parallel()

		b := newRefTestBackend(t)
		oid, err := ginternals.NewOidFromStr("bbb720a96e4c29b9950a4c577c98470a4d5dd089")
		require.NoError(t, err)
		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/master", oid)))
		require.NoError(t, b.WriteReference(ginternals.NewReference("refs/heads/other", oid)))

		count := 0
		err = b.WalkReferences(func(ref *ginternals.Reference) error {
			count++
			return backend.WalkStop
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
