// Package localtree builds tree objects directly from the filesystem,
// the way `write-tree` needs to: turning a directory into a tree
// object without going through a staging index. It does not write
// trees back to the filesystem.
package localtree

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/ginternals/object"
	"golang.org/x/xerrors"
)

// gitDirName is skipped when walking a working tree: it holds the
// repository's own metadata, not tracked content.
const gitDirName = ".git"

// ErrUnsupportedMode is returned when a filesystem entry can't be
// represented by any of the tree modes this package knows about.
var ErrUnsupportedMode = errors.New("unsupported filesystem entry mode")

// ObjectWriter is the subset of Repository needed to persist objects
// produced while walking a directory. *git.Repository satisfies it.
type ObjectWriter interface {
	WriteObject(o *object.Object) (ginternals.Oid, error)
}

// WriteTree recursively hashes the directory at path, persisting every
// blob and subtree it produces through w, and returns the resulting
// root tree. Entries literally named ".git" are skipped.
func WriteTree(w ObjectWriter, path string) (*object.Tree, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, xerrors.Errorf("could not read directory %s: %w", path, err)
	}

	entries := make([]object.TreeEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.Name() == gitDirName {
			continue
		}

		childPath := filepath.Join(path, de.Name())
		info, err := de.Info()
		if err != nil {
			return nil, xerrors.Errorf("could not stat %s: %w", childPath, err)
		}

		entry, err := writeEntry(w, childPath, de.Name(), info)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	tree := object.NewTree(entries)
	if _, err := w.WriteObject(tree.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not persist tree %s: %w", path, err)
	}
	return tree, nil
}

func writeEntry(w ObjectWriter, path, name string, info os.FileInfo) (object.TreeEntry, error) {
	switch {
	case info.IsDir():
		sub, err := WriteTree(w, path)
		if err != nil {
			return object.TreeEntry{}, err
		}
		return object.TreeEntry{Path: name, Mode: object.ModeDirectory, ID: sub.ID()}, nil

	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return object.TreeEntry{}, xerrors.Errorf("could not read symlink %s: %w", path, err)
		}
		oid, err := writeBlob(w, []byte(target))
		if err != nil {
			return object.TreeEntry{}, err
		}
		return object.TreeEntry{Path: name, Mode: object.ModeSymLink, ID: oid}, nil

	case info.Mode().IsRegular():
		content, err := os.ReadFile(path)
		if err != nil {
			return object.TreeEntry{}, xerrors.Errorf("could not read file %s: %w", path, err)
		}
		oid, err := writeBlob(w, content)
		if err != nil {
			return object.TreeEntry{}, err
		}
		mode := object.ModeFile
		if info.Mode()&0o111 != 0 {
			mode = object.ModeExecutable
		}
		return object.TreeEntry{Path: name, Mode: mode, ID: oid}, nil

	default:
		return object.TreeEntry{}, xerrors.Errorf("entry %s: %w", path, ErrUnsupportedMode)
	}
}

func writeBlob(w ObjectWriter, content []byte) (ginternals.Oid, error) {
	oid, err := w.WriteObject(object.New(object.TypeBlob, content))
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist blob: %w", err)
	}
	return oid, nil
}
