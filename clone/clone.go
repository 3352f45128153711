// Package clone implements the client side of a Smart HTTP clone: ref
// discovery, a single want/done negotiation, packfile decoding, and
// materializing the result into a freshly initialized local
// repository.
package clone

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	git "github.com/arourke/gogit"
	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/ginternals/object"
	"github.com/arourke/gogit/ginternals/packfile"
	"github.com/arourke/gogit/transport"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// ErrUnsupportedMode is returned when a received tree entry can't be
// checked out because its mode isn't one this client understands.
var ErrUnsupportedMode = errors.New("unsupported tree entry mode")

// Result summarizes a completed clone.
type Result struct {
	// HeadRef is the full name of the ref HEAD was pointed at.
	HeadRef string
	// ObjectCount is the number of objects received and persisted.
	ObjectCount int
}

// Clone drives a single clone operation from a remote URL into a
// freshly initialized local repository.
type Clone struct {
	url    string
	dest   string
	client *transport.Client
}

// New returns a Clone ready to fetch url into dest. dest must not
// already exist; Run creates it via git.InitRepository.
func New(url, dest string) *Clone {
	return &Clone{
		url:    url,
		dest:   dest,
		client: transport.NewClient(url),
	}
}

// DirectoryFromURL derives the directory name git uses by default when
// no destination is given on the command line: the last path segment,
// with a trailing ".git" stripped.
func DirectoryFromURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	parts := strings.Split(url, "/")
	name := parts[len(parts)-1]
	return strings.TrimSuffix(name, ".git")
}

// Run executes the clone state machine end to end: discover remote
// refs, negotiate and fetch the packfile, persist every object and
// ref, and check out HEAD's tree into the working directory.
func (c *Clone) Run(ctx context.Context) (res *Result, err error) {
	ad, err := c.client.DiscoverReferences(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not discover remote references")
	}

	r, err := git.InitRepository(c.dest)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not initialize destination repository")
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = xerrors.Errorf("could not close destination repository: %w", cerr)
		}
	}()

	if ad.HeadSHA.IsZero() {
		// The remote has no commits yet; an empty, freshly initialized
		// repository is the correct result.
		return &Result{HeadRef: ginternals.LocalBranchFullName(ginternals.Master)}, nil
	}

	packResp, err := c.client.UploadPack(ctx, ad.HeadSHA, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not negotiate upload-pack")
	}
	defer packResp.Close() //nolint:errcheck // best effort, the fetch already succeeded or failed by this point

	objs, err := packfile.Decode(packResp, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "could not decode packfile")
	}

	byOid := make(map[ginternals.Oid]*object.Object, len(objs))
	for _, o := range objs {
		if _, err := r.WriteObject(o); err != nil {
			return nil, xerrors.Errorf("could not persist object %s: %w", o.ID().String(), err)
		}
		byOid[o.ID()] = o
	}

	for name, oid := range ad.Refs {
		if err := r.WriteReference(ginternals.NewReference(name, oid)); err != nil {
			return nil, xerrors.Errorf("could not write ref %s: %w", name, err)
		}
	}

	headRefName := ad.HeadRef
	if headRefName == "" {
		headRefName = ginternals.LocalBranchFullName(ginternals.Master)
	}
	if err := r.WriteReference(ginternals.NewSymbolicReference(ginternals.Head, headRefName)); err != nil {
		return nil, xerrors.Errorf("could not write HEAD: %w", err)
	}

	if err := checkout(r, byOid, ad.HeadSHA); err != nil {
		return nil, pkgerrors.Wrap(err, "could not checkout working tree")
	}

	return &Result{HeadRef: headRefName, ObjectCount: len(objs)}, nil
}

// checkout materializes the tree of the commit at headSHA into the
// repository's working directory. It's a no-op for a bare repository.
func checkout(r *git.Repository, byOid map[ginternals.Oid]*object.Object, headSHA ginternals.Oid) error {
	fs := r.WorkingTree()
	if fs == nil {
		return nil
	}

	commitObj, ok := byOid[headSHA]
	if !ok {
		return xerrors.Errorf("commit %s was not found in the received pack", headSHA.String())
	}
	commit, err := commitObj.AsCommit()
	if err != nil {
		return xerrors.Errorf("could not parse HEAD commit %s: %w", headSHA.String(), err)
	}

	return checkoutTree(fs, byOid, commit.TreeID(), r.RepoRoot())
}

func checkoutTree(fs afero.Fs, byOid map[ginternals.Oid]*object.Object, treeID ginternals.Oid, dir string) error {
	treeObj, ok := byOid[treeID]
	if !ok {
		return xerrors.Errorf("tree %s was not found in the received pack", treeID.String())
	}
	tree, err := treeObj.AsTree()
	if err != nil {
		return xerrors.Errorf("could not parse tree %s: %w", treeID.String(), err)
	}

	for _, e := range tree.Entries() {
		entryPath := filepath.Join(dir, e.Path)

		switch e.Mode {
		case object.ModeDirectory:
			if err := fs.MkdirAll(entryPath, 0o755); err != nil {
				return xerrors.Errorf("could not create directory %s: %w", entryPath, err)
			}
			if err := checkoutTree(fs, byOid, e.ID, entryPath); err != nil {
				return err
			}

		case object.ModeFile, object.ModeExecutable:
			blobObj, ok := byOid[e.ID]
			if !ok {
				return xerrors.Errorf("blob %s was not found in the received pack", e.ID.String())
			}
			perm := os.FileMode(0o644)
			if e.Mode == object.ModeExecutable {
				perm = 0o755
			}
			if err := afero.WriteFile(fs, entryPath, blobObj.AsBlob().Bytes(), perm); err != nil {
				return xerrors.Errorf("could not write %s: %w", entryPath, err)
			}

		case object.ModeSymLink:
			blobObj, ok := byOid[e.ID]
			if !ok {
				return xerrors.Errorf("blob %s was not found in the received pack", e.ID.String())
			}
			linker, ok := fs.(afero.Linker)
			if !ok {
				return xerrors.Errorf("filesystem %T cannot create symlink %s: %w", fs, entryPath, ErrUnsupportedMode)
			}
			target := string(blobObj.AsBlob().Bytes())
			if err := linker.SymlinkIfPossible(target, entryPath); err != nil {
				return xerrors.Errorf("could not create symlink %s: %w", entryPath, err)
			}

		default:
			return xerrors.Errorf("entry %s has mode %o: %w", entryPath, e.Mode, ErrUnsupportedMode)
		}
	}
	return nil
}
