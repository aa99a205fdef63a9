package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"bullionbook/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	scheduler *SchedulerServiceImpl
	exporter  *fakeExporter
	store     *fakeSecureStore
	location  *fakeLocation
	now       time.Time
}

func newSchedulerFixture(t *testing.T, enabled bool) *schedulerFixture {
	t.Helper()
	store := newFakeSecureStore()
	keys := NewKeyService(store, testLogger())
	require.NoError(t, keys.SetExportPassphrase("pass"))

	f := &schedulerFixture{
		exporter: &fakeExporter{},
		store:    store,
		location: newFakeLocation(true),
		now:      time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC),
	}
	f.scheduler = NewSchedulerService(f.exporter, keys, f.location, store, enabled, 24*time.Hour, testLogger())
	f.scheduler.clock = func() time.Time { return f.now }
	return f
}

func (f *schedulerFixture) setLastSuccess(ts time.Time) {
	f.store.values[nameLastAutoBackup] = strconv.FormatInt(ts.UnixMilli(), 10)
}

func TestScheduler_DisabledIsNoop(t *testing.T) {
	f := newSchedulerFixture(t, false)

	res := f.scheduler.RunIfDue(context.Background())
	assert.False(t, res.Ran)
	assert.Equal(t, "auto backup disabled", res.Skipped)
	assert.Zero(t, f.exporter.calls)
}

func TestScheduler_MissingKeyIsNoop(t *testing.T) {
	f := newSchedulerFixture(t, true)
	delete(f.store.values, "export_key")

	res := f.scheduler.RunIfDue(context.Background())
	assert.False(t, res.Ran)
	assert.Equal(t, "export key not set", res.Skipped)
}

func TestScheduler_UngrantedLocationIsNoop(t *testing.T) {
	f := newSchedulerFixture(t, true)
	f.location.granted = false

	res := f.scheduler.RunIfDue(context.Background())
	assert.False(t, res.Ran)
	assert.Equal(t, "backup location not granted", res.Skipped)
}

func TestScheduler_RunsWhenDueAndRecordsSuccess(t *testing.T) {
	f := newSchedulerFixture(t, true)

	res := f.scheduler.RunIfDue(context.Background())
	require.True(t, res.Ran)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, f.exporter.calls)
	assert.Equal(t, strconv.FormatInt(f.now.UnixMilli(), 10), f.store.values[nameLastAutoBackup])
}

func TestScheduler_AtMostOncePerWindow(t *testing.T) {
	f := newSchedulerFixture(t, true)
	f.setLastSuccess(f.now.Add(-23 * time.Hour))

	res := f.scheduler.RunIfDue(context.Background())
	assert.False(t, res.Ran)
	assert.Equal(t, "not due", res.Skipped)

	f.setLastSuccess(f.now.Add(-25 * time.Hour))
	res = f.scheduler.RunIfDue(context.Background())
	assert.True(t, res.Ran)
}

func TestScheduler_FailedRunRetriesNextTick(t *testing.T) {
	f := newSchedulerFixture(t, true)
	f.exporter.err = apperror.ErrIOFailure(assert.AnError)

	res := f.scheduler.RunIfDue(context.Background())
	assert.True(t, res.Ran)
	assert.Error(t, res.Err)
	assert.Empty(t, f.store.values[nameLastAutoBackup],
		"failure must not advance the eligibility clock")

	// Next tick retries immediately instead of waiting a full window.
	f.exporter.err = nil
	res = f.scheduler.RunIfDue(context.Background())
	require.True(t, res.Ran)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, f.exporter.calls)
}
