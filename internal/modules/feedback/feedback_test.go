package feedback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/dbtest"
)

func TestModerationFlow(t *testing.T) {
	r := NewRepo(dbtest.Open(t, Models()...))
	ctx := context.Background()

	f, err := r.Submit(ctx, SubmitInput{Name: " Anita ", City: "Chennai", Rating: 5, Message: "Great sparklers, safe packing."})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, f.Status)
	assert.Equal(t, "Anita", f.Name)

	pub, err := r.Approved(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pub, "pending feedback is not public")

	require.NoError(t, r.Approve(ctx, f.ID))
	pub, err = r.Approved(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pub, 1)

	require.NoError(t, r.Hide(ctx, f.ID))
	hidden, err := r.List(ctx, StatusHidden)
	require.NoError(t, err)
	require.Len(t, hidden, 1)

	require.NoError(t, r.Delete(ctx, f.ID))
	assert.ErrorIs(t, r.Delete(ctx, f.ID), ErrNotFound)
	assert.ErrorIs(t, r.Approve(ctx, f.ID), ErrNotFound)
}
