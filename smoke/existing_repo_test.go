package smoke_test

import (
	"testing"

	git "github.com/arourke/gogit"
	"github.com/arourke/gogit/ginternals"
	"github.com/arourke/gogit/ginternals/object"
	"github.com/arourke/gogit/internal/testutil"
	"github.com/stretchr/testify/require"
)

// seedRepo builds a minimal repository with a single commit on the
// default branch, standing in for a pre-existing checkout.
func seedRepo(t *testing.T, repoPath string) (r *git.Repository, headCommit *object.Commit) {
	t.Helper()

	r, err := git.InitRepository(repoPath)
	require.NoError(t, err, "failed creating a repo")

	readme, err := r.NewBlob([]byte("Hello World"))
	require.NoError(t, err, "failed creating readme")

	rootTree, err := r.NewTree([]object.TreeEntry{
		{Path: "README.md", ID: readme.ID(), Mode: object.ModeFile},
	})
	require.NoError(t, err, "failed creating root tree")

	defaultBranchName := ginternals.LocalBranchFullName(ginternals.Master)
	headCommit, err = r.NewCommit(
		rootTree.ID(),
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{
			Message: "Initial commit",
		})
	require.NoError(t, err, "failed creating the initial commit")
	require.NoError(t, r.WriteReference(ginternals.NewReference(defaultBranchName, headCommit.ID())))

	return r, headCommit
}

func TestWorkingOnExistingRepo(t *testing.T) {
	t.Parallel()

	repoPath, cleanup := testutil.TempDir(t)
	t.Cleanup(cleanup)

	r, headCommit := seedRepo(t, repoPath)
	t.Cleanup(func() {
		require.NoError(t, r.Close(), "failed closing repo")
	})

	defaultBranchName := ginternals.LocalBranchFullName(ginternals.Master)

	rootTree, err := r.GetTree(headCommit.TreeID())
	require.NoError(t, err, "couldn't get the head commit's tree")

	// Let's find the readme
	entries := rootTree.Entries()
	readmeOid := ginternals.NullOid
	for _, entry := range entries {
		if entry.Path == "README.md" {
			readmeOid = entry.ID
			break
		}
	}
	if readmeOid.IsZero() {
		t.Fatal("couldn't find the readme in the tree")
	}
	readmeObj, err := r.GetObject(readmeOid)
	require.NoError(t, err, "failed finding the readme object from it's oid")
	readme := readmeObj.AsBlob()

	newReadme, err := r.NewBlob(append(readme.BytesCopy(), []byte("\nHello World\n")...))
	require.NoError(t, err, "failed creating new readme")

	newTree, err := r.NewTree([]object.TreeEntry{
		{Path: "README.md", ID: newReadme.ID(), Mode: object.ModeFile},
	})
	require.NoError(t, err, "failed creating new tree")

	fixBranchName := ginternals.LocalBranchFullName("ml/docs/update-readme")
	fixCommit, err := r.NewCommit(
		newTree.ID(),
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{
			Message:   "docs(readme): Fix typo",
			ParentsID: []ginternals.Oid{headCommit.ID()},
		})
	require.NoError(t, err, "failed creating the commit with the updated readme")
	require.NoError(t, r.WriteReference(ginternals.NewReference(fixBranchName, fixCommit.ID())))

	// Alright, time to merge this new branch into the default one!

	mergeCommit, err := r.NewCommit(
		newTree.ID(),
		object.NewSignature("John Doe", "john@domain.tld"),
		&object.CommitOptions{
			Message:   "merge branch ml/docs/update-readme into main",
			ParentsID: []ginternals.Oid{headCommit.ID(), fixCommit.ID()},
		})
	require.NoError(t, err, "failed creating the commit with the fix")
	require.NoError(t, r.WriteReference(ginternals.NewReference(defaultBranchName, mergeCommit.ID())))

	// Make sure the merge worked
	mainBranch, err := r.Reference(defaultBranchName)
	require.NoError(t, err, "couldn't get the main branch")
	require.Equal(t, mergeCommit.ID(), mainBranch.Target(), "the merge didn't work")
}
