package backend_test

import (
	"testing"

	"github.com/arourke/gogit/backend"
	"github.com/arourke/gogit/ginternals"
	"github.com/stretchr/testify/assert"
)

func TestWalkStopIsDistinctFromOtherErrors(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, backend.WalkStop, ginternals.ErrRefNotFound)
	assert.EqualError(t, backend.WalkStop, "stop walking")
}

func TestRefWalkFuncCanStopAWalk(t *testing.T) {
	t.Parallel()

	refs := []*ginternals.Reference{
		ginternals.NewReference("refs/heads/a", ginternals.NullOid),
		ginternals.NewReference("refs/heads/b", ginternals.NullOid),
	}

	var seen int
	var walk backend.RefWalkFunc = func(ref *ginternals.Reference) error {
		seen++
		if ref.Name() == "refs/heads/a" {
			return backend.WalkStop
		}
		return nil
	}

	for _, ref := range refs {
		if err := walk(ref); err != nil {
			break
		}
	}
	assert.Equal(t, 1, seen)
}
