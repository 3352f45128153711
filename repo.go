// Package git ties together the object database, reference store, and
// (for non-bare repositories) working tree into a single Repository type.
package git

import (
	"errors"
	"path/filepath"

	"github.com/arourke/gogit/backend"
	"github.com/arourke/gogit/backend/fsbackend"
	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/ginternals/object"
	"github.com/arourke/gogit/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// List of errors returned by the Repository struct
var (
	ErrRepositoryNotExist           = errors.New("repository does not exist")
	ErrRepositoryUnsupportedVersion = errors.New("repository not supported")
	ErrRepositoryExists             = errors.New("repository already exists")
)

// Repository represent a git repository
// A Git repository is the .git/ folder inside a project.
// This repository tracks all changes made to files in your project,
// building a history over time.
// https://blog.axosoft.com/learning-git-repository/
type Repository struct {
	dotGitPath string
	dotGit     backend.Backend
	repoRoot   string
	wt         afero.Fs
}

// InitOptions contains all the optional data used to initialized a
// repository
type InitOptions struct {
	// IsBare represents whether a bare repository will be created or not
	IsBare bool
	// GitBackend represents the underlying backend to use to init the
	// repository and interact with the odb.
	// By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree.
	// By default the filesystem will be used
	// Setting this is useless if IsBare is set to true
	WorkingTreeBackend afero.Fs
}

// InitRepository initialize a new git repository by creating the .git
// directory in the given path, which is where almost everything that
// Git stores and manipulates is located.
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain#ch10-git-internals
func InitRepository(repoPath string) (*Repository, error) {
	return InitRepositoryWithOptions(repoPath, InitOptions{})
}

// InitRepositoryWithOptions initialize a new git repository by creating
// the .git directory in the given path, which is where almost everything
// that Git stores and manipulates is located.
// https://git-scm.com/book/en/v2/Git-Internals-Plumbing-and-Porcelain#ch10-git-internals
func InitRepositoryWithOptions(repoPath string, opts InitOptions) (r *Repository, err error) {
	r, err = newRepository(repoPath, opts.IsBare, opts.GitBackend, opts.WorkingTreeBackend)
	if err != nil {
		return nil, err
	}

	if err = r.dotGit.Init(); err != nil {
		return nil, xerrors.Errorf("could not initialize repository: %w", err)
	}

	ref := ginternals.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName(ginternals.Master))
	if err = r.dotGit.WriteReferenceSafe(ref); err != nil {
		if errors.Is(err, ginternals.ErrRefExists) {
			return nil, ErrRepositoryExists
		}
		return nil, xerrors.Errorf("could not write HEAD: %w", err)
	}

	return r, nil
}

// OpenOptions contains all the optional data used to open a repository
type OpenOptions struct {
	// IsBare represents whether the repository is bare or not
	IsBare bool
	// GitBackend represents the underlying backend to use to interact
	// with the odb. By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree.
	// By default the filesystem will be used
	// Setting this is useless if IsBare is set to true
	WorkingTreeBackend afero.Fs
}

// OpenRepository loads an existing git repository, after checking
// that its HEAD can be read, and returns a Repository instance
func OpenRepository(repoPath string) (*Repository, error) {
	return OpenRepositoryWithOptions(repoPath, OpenOptions{})
}

// OpenRepositoryWithOptions loads an existing git repository, after
// checking that its HEAD can be read, and returns a Repository instance
func OpenRepositoryWithOptions(repoPath string, opts OpenOptions) (r *Repository, err error) {
	r, err = newRepository(repoPath, opts.IsBare, opts.GitBackend, opts.WorkingTreeBackend)
	if err != nil {
		return nil, err
	}

	// since we can't check if the directory exists on disk to
	// validate if the repo exists, we instead check for HEAD, since it
	// should always be there for a repo created by this package
	if _, err = r.dotGit.Reference(ginternals.Head); err != nil {
		return nil, ErrRepositoryNotExist
	}

	return r, nil
}

func newRepository(repoPath string, isBare bool, gitBackend backend.Backend, wtBackend afero.Fs) (*Repository, error) {
	dotGitPath := repoPath
	if !isBare {
		dotGitPath = filepath.Join(repoPath, gitpath.DotGitPath)
	}
	r := &Repository{
		repoRoot:   repoPath,
		dotGitPath: dotGitPath,
		dotGit:     gitBackend,
	}

	if r.dotGit == nil {
		b, err := fsbackend.New(dotGitPath, nil)
		if err != nil {
			return nil, xerrors.Errorf("could not create backend: %w", err)
		}
		r.dotGit = b
	}

	if !isBare {
		r.wt = wtBackend
		if r.wt == nil {
			r.wt = afero.NewOsFs()
		}
	}

	return r, nil
}

// Close releases any resource held by the repository
func (r *Repository) Close() error {
	return r.dotGit.Close()
}

// IsBare returns whether the repository has no working tree
func (r *Repository) IsBare() bool {
	return r.wt == nil
}

// WorkingTree returns the afero.Fs backing the repository's working
// tree. It returns nil for a bare repository.
func (r *Repository) WorkingTree() afero.Fs {
	return r.wt
}

// RepoRoot returns the absolute path of the repository's root, the
// parent of .git for a non-bare repository.
func (r *Repository) RepoRoot() string {
	return r.repoRoot
}

// Path returns the absolute path of the .git directory (or of the
// repository root, for a bare repository)
func (r *Repository) Path() string {
	return r.dotGitPath
}

// GetObject returns the object matching the given oid
func (r *Repository) GetObject(oid ginternals.Oid) (*object.Object, error) {
	o, err := r.dotGit.Object(oid)
	if err != nil {
		return nil, xerrors.Errorf("could not get object %s: %w", oid.String(), err)
	}
	return o, nil
}

// HasObject returns whether an object exists in the odb
func (r *Repository) HasObject(oid ginternals.Oid) (bool, error) {
	return r.dotGit.HasObject(oid)
}

// WriteObject writes an object to the odb and returns its Oid
func (r *Repository) WriteObject(o *object.Object) (ginternals.Oid, error) {
	oid, err := r.dotGit.WriteObject(o)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not write object: %w", err)
	}
	return oid, nil
}

// NewBlob creates, persists, and returns a new Blob object
func (r *Repository) NewBlob(data []byte) (*object.Blob, error) {
	o := object.New(object.TypeBlob, data)
	if _, err := r.dotGit.WriteObject(o); err != nil {
		return nil, xerrors.Errorf("could not persist blob: %w", err)
	}
	return object.NewBlob(o), nil
}

// GetTree returns the tree matching the given oid
func (r *Repository) GetTree(oid ginternals.Oid) (*object.Tree, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	return object.NewTreeFromObject(o)
}

// NewTree creates, persists, and returns a new Tree object
func (r *Repository) NewTree(entries []object.TreeEntry) (*object.Tree, error) {
	t := object.NewTree(entries)
	if _, err := r.dotGit.WriteObject(t.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not persist tree: %w", err)
	}
	return t, nil
}

// GetCommit returns the commit matching the given oid
func (r *Repository) GetCommit(oid ginternals.Oid) (*object.Commit, error) {
	o, err := r.GetObject(oid)
	if err != nil {
		return nil, err
	}
	return object.NewCommitFromObject(o)
}

// NewCommit creates, persists, and returns a new Commit object
func (r *Repository) NewCommit(treeID ginternals.Oid, author object.Signature, opts *object.CommitOptions) (*object.Commit, error) {
	c := object.NewCommit(treeID, author, opts)
	if _, err := r.dotGit.WriteObject(c.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not persist commit: %w", err)
	}
	return c, nil
}

// Reference returns a stored reference from its name
func (r *Repository) Reference(name string) (*ginternals.Reference, error) {
	return r.dotGit.Reference(name)
}

// Head returns the reference HEAD points to
func (r *Repository) Head() (*ginternals.Reference, error) {
	return r.dotGit.Reference(ginternals.Head)
}

// WriteReference writes a reference, overwriting it if it already exists
func (r *Repository) WriteReference(ref *ginternals.Reference) error {
	return r.dotGit.WriteReference(ref)
}

// WalkReferences runs f against every reference known to the repository
func (r *Repository) WalkReferences(f backend.RefWalkFunc) error {
	return r.dotGit.WalkReferences(f)
}
