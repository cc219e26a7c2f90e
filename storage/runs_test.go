package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/azsku/errors"
	testdb "github.com/teranos/azsku/internal/testing"
)

func TestRuns(t *testing.T) {
	store := NewSQLStore(testdb.CreateMigratedTestDB(t), nil, "1.0.0")
	ctx := context.Background()

	_, err := store.LastRun(ctx)
	assert.True(t, errors.IsNotFoundError(err))

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	run := &Run{ID: uuid.NewString(), StartedAt: started}
	require.NoError(t, store.StartRun(ctx, run))
	assert.Equal(t, "1.0.0", run.ExtractorVersion)

	run.Documents, run.Skipped, run.Failed = 10, 2, 1
	run.New, run.Changed, run.Unchanged = 5, 1, 30
	require.NoError(t, store.FinishRun(ctx, run))
	require.NotNil(t, run.FinishedAt)

	// dry runs never count as the last run
	dry := &Run{ID: uuid.NewString(), StartedAt: started.Add(time.Hour), DryRun: true}
	require.NoError(t, store.StartRun(ctx, dry))
	require.NoError(t, store.FinishRun(ctx, dry))

	last, err := store.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, last.ID)
	assert.Equal(t, "1.0.0", last.ExtractorVersion)
	assert.WithinDuration(t, started, last.StartedAt, time.Second)
	require.NotNil(t, last.FinishedAt)
	assert.False(t, last.DryRun)
	assert.Equal(t, 10, last.Documents)
	assert.Equal(t, 2, last.Skipped)
	assert.Equal(t, 1, last.Failed)
	assert.Equal(t, 5, last.New)
	assert.Equal(t, 1, last.Changed)
	assert.Equal(t, 30, last.Unchanged)
}

func TestRuns_Validation(t *testing.T) {
	store := NewSQLStore(testdb.CreateMigratedTestDB(t), nil, "1.0.0")
	ctx := context.Background()

	err := store.StartRun(ctx, &Run{ID: "not-a-uuid", StartedAt: time.Now()})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	err = store.FinishRun(ctx, &Run{ID: uuid.NewString()})
	assert.True(t, errors.IsNotFoundError(err))
}
