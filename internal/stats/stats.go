// Package stats rolls a user's session history up by deck and by favorite
// location.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vytor/studyflash/internal/geo"
	"github.com/vytor/studyflash/internal/models"
	"golang.org/x/sync/errgroup"
)

// Input is everything a roll-up reads. Decks and Locations are only used to
// resolve names and attribute sessions; missing entries degrade to
// placeholders.
type Input struct {
	Sessions  []models.SessionStat
	Decks     []models.Deck
	Locations []models.FavoriteLocation
}

// tally keeps sums in hundredths so merging partial tallies in any order
// gives identical totals.
type tally struct {
	score    int64
	possible int64
	count    int
}

func (t *tally) add(s models.SessionStat) {
	t.score += hundredths(s.TotalScore)
	t.possible += hundredths(s.TotalPossible)
	t.count++
}

func (t *tally) merge(o tally) {
	t.score += o.score
	t.possible += o.possible
	t.count += o.count
}

func (t tally) percentage() int {
	if t.possible <= 0 {
		return 0
	}
	return int(math.Round(float64(t.score) / float64(t.possible) * 100))
}

func hundredths(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v * 100))
}

type partial struct {
	decks     map[string]tally
	locations map[string]tally
}

func newPartial() partial {
	return partial{decks: map[string]tally{}, locations: map[string]tally{}}
}

func (p partial) add(s models.SessionStat, locations []models.FavoriteLocation) {
	d := p.decks[s.DeckID]
	d.add(s)
	p.decks[s.DeckID] = d

	if !s.HasLocation() {
		return
	}
	loc, ok := geo.Within(*s.Latitude, *s.Longitude, locations)
	if !ok {
		return
	}
	l := p.locations[loc.ID]
	l.add(s)
	p.locations[loc.ID] = l
}

func (p partial) merge(o partial) {
	for id, t := range o.decks {
		cur := p.decks[id]
		cur.merge(t)
		p.decks[id] = cur
	}
	for id, t := range o.locations {
		cur := p.locations[id]
		cur.merge(t)
		p.locations[id] = cur
	}
}

// Summarize computes both views sequentially.
func Summarize(in Input) models.StatsSummary {
	p := newPartial()
	for _, s := range in.Sessions {
		p.add(s, in.Locations)
	}
	return finish(p, in)
}

// ByDeck groups sessions by deck, best percentage first.
func ByDeck(sessions []models.SessionStat, decks []models.Deck) []models.DeckStat {
	return Summarize(Input{Sessions: sessions, Decks: decks}).ByDeck
}

// ByLocation attributes each located session to the nearest favorite
// location containing it and groups by location, best percentage first.
func ByLocation(sessions []models.SessionStat, locations []models.FavoriteLocation) []models.LocationStat {
	return Summarize(Input{Sessions: sessions, Locations: locations}).ByLocation
}

// Parallel computes the same summary as Summarize by splitting sessions into
// shards evaluated concurrently and merging the partial tallies.
func Parallel(ctx context.Context, in Input, shards int) (models.StatsSummary, error) {
	if shards < 1 {
		shards = 1
	}
	if shards > len(in.Sessions) {
		shards = max(len(in.Sessions), 1)
	}

	parts := make([]partial, shards)
	size := (len(in.Sessions) + shards - 1) / shards
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := min(i*size, len(in.Sessions))
		hi := min(lo+size, len(in.Sessions))
		g.Go(func() error {
			p := newPartial()
			for _, s := range in.Sessions[lo:hi] {
				if err := ctx.Err(); err != nil {
					return err
				}
				p.add(s, in.Locations)
			}
			parts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.StatsSummary{}, err
	}

	merged := newPartial()
	for _, p := range parts {
		merged.merge(p)
	}
	return finish(merged, in), nil
}

func finish(p partial, in Input) models.StatsSummary {
	names := make(map[string]string, len(in.Decks))
	for _, d := range in.Decks {
		names[d.ID] = d.Name
	}

	byDeck := make([]models.DeckStat, 0, len(p.decks))
	for id, t := range p.decks {
		name := names[id]
		if name == "" {
			name = fmt.Sprintf("Deck %s", id)
		}
		byDeck = append(byDeck, models.DeckStat{
			DeckID:       id,
			DeckName:     name,
			SumScore:     float64(t.score) / 100,
			SumPossible:  float64(t.possible) / 100,
			Percentage:   t.percentage(),
			SessionCount: t.count,
		})
	}
	sort.Slice(byDeck, func(i, j int) bool {
		a, b := byDeck[i], byDeck[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		if a.DeckName != b.DeckName {
			return a.DeckName < b.DeckName
		}
		return a.DeckID < b.DeckID
	})

	byLocation := make([]models.LocationStat, 0, len(p.locations))
	for _, loc := range in.Locations {
		t, ok := p.locations[loc.ID]
		if !ok || t.count == 0 {
			continue
		}
		name := loc.Name
		if name == "" {
			name = fmt.Sprintf("Location %s", loc.ID)
		}
		byLocation = append(byLocation, models.LocationStat{
			LocationID:   loc.ID,
			LocationName: name,
			SumScore:     float64(t.score) / 100,
			SumPossible:  float64(t.possible) / 100,
			Percentage:   t.percentage(),
			SessionCount: t.count,
		})
		// duplicate ids in the input must not be reported twice
		delete(p.locations, loc.ID)
	}
	sort.Slice(byLocation, func(i, j int) bool {
		a, b := byLocation[i], byLocation[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		if a.LocationName != b.LocationName {
			return a.LocationName < b.LocationName
		}
		return a.LocationID < b.LocationID
	})

	return models.StatsSummary{ByDeck: byDeck, ByLocation: byLocation}
}
