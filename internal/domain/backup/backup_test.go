package backup

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tenant := uuid.MustParse("7f1c2b6e-3a4d-4f5e-8a9b-0c1d2e3f4a5b")
	at := time.Date(2026, 3, 1, 3, 0, 5, 0, time.UTC)
	assert.Equal(t, "backups/7f1c2b6e-3a4d-4f5e-8a9b-0c1d2e3f4a5b/20260301T030005Z.json.gz", ObjectKey(tenant, at))
}

func TestBackup_Lifecycle(t *testing.T) {
	start := time.Now()
	b := Start(uuid.New(), TriggerManual, start)
	assert.Equal(t, StatusRunning, b.Status)
	assert.False(t, b.Downloadable())
	assert.Zero(t, b.Duration())

	require.NoError(t, b.Complete(1024, map[string]int{"clients": 3}, start.Add(2*time.Second)))
	assert.True(t, b.Downloadable())
	assert.Equal(t, 2*time.Second, b.Duration())
	assert.Equal(t, 3, b.TableCounts["clients"])
	require.Len(t, b.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeBackupCompleted, b.GetDomainEvents()[0].EventType())

	assert.Error(t, b.Complete(1, nil, time.Now()))
}

func TestBackup_Fail(t *testing.T) {
	b := Start(uuid.New(), TriggerScheduled, time.Now())
	b.Fail(errors.New("bucket missing"), time.Now())
	assert.Equal(t, StatusFailed, b.Status)
	assert.Equal(t, "bucket missing", b.Error)
	assert.False(t, b.Downloadable())
}

func TestSnapshotCounts(t *testing.T) {
	s := &Snapshot{Tables: map[string][]map[string]any{
		"clients":  {{"id": "a"}, {"id": "b"}},
		"invoices": {},
	}}
	assert.Equal(t, map[string]int{"clients": 2, "invoices": 0}, s.Counts())
}
