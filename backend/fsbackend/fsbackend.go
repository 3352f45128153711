// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"path/filepath"
	"sync"

	"github.com/arourke/gogit/backend"
	"github.com/arourke/gogit/internal/cache"
	"github.com/arourke/gogit/internal/gitpath"
	"github.com/arourke/gogit/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// cacheSize is the amount of objects kept in memory to avoid
// re-reading and re-inflating the same loose object repeatedly
const cacheSize = 128

// objectMutexCount is the number of stripes used by the backend's
// per-oid named mutex
const objectMutexCount = 64

// Backend is a Backend implementation that uses the filesystem to store data
type Backend struct {
	root string
	fs   afero.Fs

	cache    *cache.LRU
	objectMu *syncutil.NamedMutex
	// looseObjects tracks the set of oids known to exist as loose
	// objects on disk, keyed by ginternals.Oid
	looseObjects sync.Map
}

// New returns a new Backend object rooted at dotGitPath, operating
// against fs. Passing a nil fs defaults to the real filesystem.
func New(dotGitPath string, fs afero.Fs) (*Backend, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	b := &Backend{
		root:     dotGitPath,
		fs:       fs,
		cache:    cache.NewLRU(cacheSize),
		objectMu: syncutil.NewNamedMutex(objectMutexCount),
	}

	if err := b.loadLooseObject(); err != nil {
		return nil, xerrors.Errorf("could not load loose objects: %w", err)
	}
	return b, nil
}

// Close frees the resources held by the backend
func (b *Backend) Close() error {
	if b.cache != nil {
		b.cache.Clear()
	}
	return nil
}

// Init initializes a repository
func (b *Backend) Init() error {
	// Create the directories
	dirs := []string{
		gitpath.ObjectsPath,
		gitpath.RefsTagsPath,
		gitpath.RefsHeadsPath,
		gitpath.ObjectsInfoPath,
		gitpath.ObjectsPackPath,
	}
	for _, d := range dirs {
		fullPath := filepath.Join(b.root, d)
		if err := b.fs.MkdirAll(fullPath, 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	// Create the files with the default content
	// (taken from a repo created on github)
	files := []struct {
		path    string
		content []byte
	}{
		{
			path:    gitpath.DescriptionPath,
			content: []byte("Unnamed repository; edit this file 'description' to name the repository.\n"),
		},
	}
	for _, f := range files {
		fullPath := filepath.Join(b.root, f.path)
		if err := afero.WriteFile(b.fs, fullPath, f.content, 0o644); err != nil {
			return xerrors.Errorf("could not create file %s: %w", f, err)
		}
	}

	err := b.setDefaultCfg()
	if err != nil {
		return xerrors.Errorf("could not set the default config: %w", err)
	}

	return nil
}
