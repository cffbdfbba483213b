package geofence_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/geofence"
	"github.com/vytor/studyflash/internal/models"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []geofence.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n geofence.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

var (
	library = models.FavoriteLocation{ID: "lib", Name: "Library"}
	cafe    = models.FavoriteLocation{ID: "cafe"}
)

func TestTracker_EnterAndExit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	tracker := geofence.NewTracker(notifier, geofence.WithClock(func() time.Time { return now }))

	_, ok := tracker.Current("u1")
	assert.False(t, ok)

	changed, err := tracker.Apply(ctx, "u1", models.GeofenceEnter, library)
	require.NoError(t, err)
	assert.True(t, changed)

	cur, ok := tracker.Current("u1")
	require.True(t, ok)
	assert.Equal(t, "lib", cur.Location.ID)
	assert.Equal(t, now, cur.Since)

	changed, err = tracker.Apply(ctx, "u1", models.GeofenceExit, library)
	require.NoError(t, err)
	assert.True(t, changed)
	_, ok = tracker.Current("u1")
	assert.False(t, ok)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "Library", notifier.sent[0].Title)
	assert.Equal(t, "You entered a study location!", notifier.sent[0].Body)
	assert.Equal(t, "You left a study location.", notifier.sent[1].Body)
}

func TestTracker_StaleExitKeepsNewerEntry(t *testing.T) {
	ctx := context.Background()
	tracker := geofence.NewTracker(&recordingNotifier{})

	_, err := tracker.Apply(ctx, "u1", models.GeofenceEnter, library)
	require.NoError(t, err)
	_, err = tracker.Apply(ctx, "u1", models.GeofenceEnter, cafe)
	require.NoError(t, err)

	changed, err := tracker.Apply(ctx, "u1", models.GeofenceExit, library)
	require.NoError(t, err)
	assert.False(t, changed)

	cur, ok := tracker.Current("u1")
	require.True(t, ok)
	assert.Equal(t, "cafe", cur.Location.ID)
}

func TestTracker_RepeatedTransitionsNotifyOnce(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	tracker := geofence.NewTracker(notifier)

	for range 3 {
		_, err := tracker.Apply(ctx, "u1", models.GeofenceEnter, library)
		require.NoError(t, err)
	}
	changed, err := tracker.Apply(ctx, "u1", models.GeofenceExit, cafe)
	require.NoError(t, err)
	assert.False(t, changed)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "You entered a study location!", notifier.sent[0].Body)
}

func TestTracker_UsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	tracker := geofence.NewTracker(nil)

	_, err := tracker.Apply(ctx, "u1", models.GeofenceEnter, library)
	require.NoError(t, err)

	_, ok := tracker.Current("u2")
	assert.False(t, ok)
}

func TestTracker_NotifierErrorIsNotFatal(t *testing.T) {
	tracker := geofence.NewTracker(&recordingNotifier{err: errors.New("push down")})

	changed, err := tracker.Apply(context.Background(), "u1", models.GeofenceEnter, cafe)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestTracker_UnknownTransition(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := geofence.NewTracker(notifier)

	_, err := tracker.Apply(context.Background(), "u1", models.GeofenceTransition("DWELL"), cafe)
	assert.Error(t, err)
	assert.Empty(t, notifier.sent)
}

func TestTracker_Forget(t *testing.T) {
	tracker := geofence.NewTracker(&recordingNotifier{})
	_, err := tracker.Apply(context.Background(), "u1", models.GeofenceEnter, cafe)
	require.NoError(t, err)

	tracker.Forget("u1", "lib")
	_, ok := tracker.Current("u1")
	assert.True(t, ok)

	tracker.Forget("u1", "cafe")
	_, ok = tracker.Current("u1")
	assert.False(t, ok)
}

func TestTracker_ConcurrentUse(t *testing.T) {
	tracker := geofence.NewTracker(&recordingNotifier{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loc := library
			if i%2 == 0 {
				loc = cafe
			}
			_, _ = tracker.Apply(context.Background(), "u1", models.GeofenceEnter, loc)
			tracker.Current("u1")
		}(i)
	}
	wg.Wait()

	_, ok := tracker.Current("u1")
	assert.True(t, ok)
}
