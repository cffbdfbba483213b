// Package geofence tracks which favorite location each user is currently in.
package geofence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
)

// Notification is what a user is told about a transition.
type Notification struct {
	OwnerID    string
	Transition models.GeofenceTransition
	Location   models.FavoriteLocation
	Title      string
	Body       string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the context logger instead of
// delivering them.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger.FromContext(ctx).WithPrefix("geofence").WithFields(map[string]any{
		"owner_id":    n.OwnerID,
		"location_id": n.Location.ID,
		"transition":  string(n.Transition),
	}).Info("%s: %s", n.Title, n.Body)
	return nil
}

type entry struct {
	location models.FavoriteLocation
	since    time.Time
}

// Tracker holds the current location of every user. It is safe for
// concurrent use and is meant to be shared by the whole application.
type Tracker struct {
	mu       sync.RWMutex
	current  map[string]entry
	notifier Notifier
	now      func() time.Time
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(notifier Notifier, opts ...Option) *Tracker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	t := &Tracker{
		current:  make(map[string]entry),
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Apply records a transition for ownerID and notifies only when the tracked
// state moves. An EXIT only clears the current location when it names that
// location, so a late exit from a previous place does not undo a newer entry.
func (t *Tracker) Apply(ctx context.Context, ownerID string, transition models.GeofenceTransition, loc models.FavoriteLocation) (changed bool, err error) {
	log := logger.FromContext(ctx).WithPrefix("geofence")

	t.mu.Lock()
	switch transition {
	case models.GeofenceEnter:
		cur, ok := t.current[ownerID]
		changed = !ok || cur.location.ID != loc.ID
		if changed {
			t.current[ownerID] = entry{location: loc, since: t.now()}
		}
	case models.GeofenceExit:
		cur, ok := t.current[ownerID]
		changed = ok && cur.location.ID == loc.ID
		if changed {
			delete(t.current, ownerID)
		}
	default:
		t.mu.Unlock()
		return false, fmt.Errorf("unknown geofence transition %q", transition)
	}
	t.mu.Unlock()

	log.Debug("transition applied: owner_id=%s, location_id=%s, transition=%s, changed=%t",
		ownerID, loc.ID, transition, changed)

	if !changed {
		return false, nil
	}
	if err := t.notifier.Notify(ctx, notificationFor(ownerID, transition, loc)); err != nil {
		log.Warn("failed to send geofence notification: %v", err)
	}
	return true, nil
}

// Current returns the location ownerID is inside, if any.
func (t *Tracker) Current(ownerID string) (models.CurrentLocation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.current[ownerID]
	if !ok {
		return models.CurrentLocation{OwnerID: ownerID}, false
	}
	loc := e.location
	return models.CurrentLocation{OwnerID: ownerID, Location: &loc, Since: e.since}, true
}

// Forget drops any state held for a location, for example after it is deleted.
func (t *Tracker) Forget(ownerID, locationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.current[ownerID]; ok && e.location.ID == locationID {
		delete(t.current, ownerID)
	}
}

func notificationFor(ownerID string, transition models.GeofenceTransition, loc models.FavoriteLocation) Notification {
	title := loc.Name
	if title == "" {
		title = "Study location"
	}
	body := "You entered a study location!"
	if transition == models.GeofenceExit {
		body = "You left a study location."
	}
	return Notification{OwnerID: ownerID, Transition: transition, Location: loc, Title: title, Body: body}
}
