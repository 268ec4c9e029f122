package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/observability"
)

// world is a theater with one screen, a row of seats and an approved movie.
type world struct {
	db      *memDB
	owner   Actor
	admin   Actor
	theater *model.Theater
	screen  *model.Screen
	movie   *model.Movie
	shows   *ShowService
	catalog *CatalogService
}

func newWorld(t *testing.T, gap time.Duration) *world {
	t.Helper()
	ctx := context.Background()
	db := newMemDB()
	w := &world{db: db, owner: Actor{ID: 1001, Role: model.RoleTheaterOwner}, admin: Actor{ID: 1, Role: model.RoleAdmin}}
	w.catalog = NewCatalogService(memTheaters{db}, memScreens{db}, memSeats{db}, memMovies{db})
	w.shows = NewShowService(memTheaters{db}, memScreens{db}, memMovies{db}, memShows{db}, gap, observability.NewNopLogger())

	var err error
	w.theater, err = w.catalog.CreateTheater(ctx, w.owner, TheaterInput{Name: "Regal", Address: "1 Main St", City: "Pune"})
	require.NoError(t, err)
	w.screen, err = w.catalog.CreateScreen(ctx, w.owner, ScreenInput{TheaterID: w.theater.ID, Name: "Audi 1", ScreenNumber: 1, Rows: 2, Columns: 5})
	require.NoError(t, err)
	inactive := false
	_, err = w.catalog.CreateSeats(ctx, w.owner, SeatsInput{ScreenID: w.screen.ID, Seats: []SeatInput{
		{RowLabel: "A", SeatNumber: 1},
		{RowLabel: "A", SeatNumber: 2},
		{RowLabel: "A", SeatNumber: 3},
		{RowLabel: "B", SeatNumber: 1, SeatType: model.SeatPremium},
		{RowLabel: "B", SeatNumber: 2, SeatType: model.SeatRecliner},
		{RowLabel: "B", SeatNumber: 3, IsActive: &inactive},
	}})
	require.NoError(t, err)
	w.movie, err = w.catalog.CreateMovie(ctx, w.admin, MovieInput{Title: "Dune", DurationMin: 155})
	require.NoError(t, err)
	require.True(t, w.movie.IsApproved)
	return w
}

func prices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		model.SeatStandard: decimal.RequireFromString("150.00"),
		model.SeatPremium:  decimal.RequireFromString("250.50"),
	}
}

var day = time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

func (w *world) input(startHour, endHour float64) ShowInput {
	return ShowInput{
		TheaterID: w.theater.ID,
		ScreenID:  w.screen.ID,
		MovieID:   w.movie.ID,
		StartTime: day.Add(time.Duration(startHour * float64(time.Hour))),
		EndTime:   day.Add(time.Duration(endHour * float64(time.Hour))),
		Prices:    prices(),
	}
}

func TestCreateShowRejectsOverlappingShow(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	_, err := w.shows.Create(ctx, w.owner, w.input(10, 12))
	require.NoError(t, err)

	_, err = w.shows.Create(ctx, w.owner, w.input(11, 13))
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Details, "conflictingShowIds")

	// A show enclosing the first one conflicts as well.
	_, err = w.shows.Create(ctx, w.owner, w.input(9, 13))
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	// Back to back is fine without a turnaround gap.
	_, err = w.shows.Create(ctx, w.owner, w.input(12, 14))
	assert.NoError(t, err)
}

func TestCreateShowHonoursTurnaroundGap(t *testing.T) {
	w := newWorld(t, 30*time.Minute)
	ctx := context.Background()

	_, err := w.shows.Create(ctx, w.owner, w.input(10, 12))
	require.NoError(t, err)
	_, err = w.shows.Create(ctx, w.owner, w.input(12, 14))
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	_, err = w.shows.Create(ctx, w.owner, w.input(12.5, 14))
	assert.NoError(t, err)
}

func TestCancelledShowsDoNotBlockTheScreen(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	sh, err := w.shows.Create(ctx, w.owner, w.input(10, 12))
	require.NoError(t, err)
	cancelled := model.ShowCancelled
	_, err = w.shows.Update(ctx, w.owner, sh.ID, ShowPatch{Status: &cancelled})
	require.NoError(t, err)

	_, err = w.shows.Create(ctx, w.owner, w.input(11, 13))
	assert.NoError(t, err)
}

func TestAcceptedShowsNeverOverlap(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var accepted []model.Show
	for i := 0; i < 300; i++ {
		start := rng.Intn(48 * 4) // quarter hours over two days
		length := 1 + rng.Intn(16)
		in := w.input(float64(start)/4, float64(start+length)/4)

		sh, err := w.shows.Create(ctx, w.owner, in)
		wantConflict := false
		for _, a := range accepted {
			if a.Overlaps(in.StartTime, in.EndTime, 0) {
				wantConflict = true
				break
			}
		}
		if wantConflict {
			require.Equal(t, apperr.Conflict, apperr.KindOf(err), "show %d", i)
			continue
		}
		require.NoError(t, err, "show %d", i)
		accepted = append(accepted, *sh)
	}

	require.NotEmpty(t, accepted)
	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			a, b := accepted[i], accepted[j]
			assert.False(t, a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime),
				"shows %d and %d overlap", a.ID, b.ID)
		}
	}
}

func TestCreateShowValidation(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	in := w.input(12, 10)
	_, err := w.shows.Create(ctx, w.owner, in)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err), "end before start")

	in = w.input(10, 12)
	in.Date = "2030-05-02"
	_, err = w.shows.Create(ctx, w.owner, in)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err), "date mismatch")

	in = w.input(10, 12)
	in.Date = "2030-05-01"
	_, err = w.shows.Create(ctx, w.owner, in)
	assert.NoError(t, err, "matching date")

	in = w.input(14, 16)
	in.Prices = map[string]decimal.Decimal{model.SeatPremium: decimal.NewFromInt(100)}
	_, err = w.shows.Create(ctx, w.owner, in)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err), "standard price missing")

	stranger := Actor{ID: 4242, Role: model.RoleTheaterOwner}
	_, err = w.shows.Create(ctx, stranger, w.input(14, 16))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	draft, err := w.catalog.CreateMovie(ctx, w.owner, MovieInput{Title: "Draft", DurationMin: 90})
	require.NoError(t, err)
	require.False(t, draft.IsApproved)
	in = w.input(14, 16)
	in.MovieID = draft.ID
	_, err = w.shows.Create(ctx, w.owner, in)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err), "unapproved movie")
}

func TestCreateShowMaterialisesSeatAvailability(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	sh, err := w.shows.Create(ctx, w.owner, w.input(10, 12))
	require.NoError(t, err)

	seats, err := w.shows.Seats(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, seats, 6)

	got := map[string]model.SeatAvailability{}
	for _, s := range seats {
		got[s.Label()] = s
	}
	assert.Equal(t, "150", got["A1"].Price.String())
	assert.Equal(t, "250.5", got["B1"].Price.String(), "premium price")
	assert.Equal(t, "150", got["B2"].Price.String(), "recliner falls back to standard")
	assert.Equal(t, model.SeatMaintenance, got["B3"].Status, "inactive seat")
	assert.Equal(t, model.SeatAvailable, got["A1"].Status)
}

func TestShowSeatStatusChanges(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	sh, err := w.shows.Create(ctx, w.owner, w.input(10, 12))
	require.NoError(t, err)
	seats, err := w.shows.Seats(ctx, sh.ID)
	require.NoError(t, err)

	assert.Equal(t, apperr.Validation, apperr.KindOf(w.shows.SetSeatStatus(ctx, w.owner, sh.ID, seats[0].SeatID, model.SeatBooked)))
	assert.NoError(t, w.shows.SetSeatStatus(ctx, w.owner, sh.ID, seats[0].SeatID, model.SeatReserved))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(w.shows.SetSeatStatus(ctx, Actor{ID: 9, Role: model.RoleTheaterOwner}, sh.ID, seats[0].SeatID, model.SeatAvailable)))
}

func TestShowLifecycle(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	sh, err := w.shows.Create(ctx, w.owner, w.input(10, 12))
	require.NoError(t, err)

	completed := model.ShowCompleted
	_, err = w.shows.Update(ctx, w.owner, sh.ID, ShowPatch{Status: &completed})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err), "scheduled cannot jump to completed")

	ongoing := model.ShowOngoing
	_, err = w.shows.Update(ctx, w.owner, sh.ID, ShowPatch{Status: &ongoing})
	require.NoError(t, err)
	_, err = w.shows.Update(ctx, w.owner, sh.ID, ShowPatch{Status: &completed})
	require.NoError(t, err)

	start := day.Add(20 * time.Hour)
	_, err = w.shows.Update(ctx, w.owner, sh.ID, ShowPatch{StartTime: &start})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err), "completed shows cannot be rescheduled")
}

func TestRescheduleChecksOverlapExcludingItself(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	first, err := w.shows.Create(ctx, w.owner, w.input(10, 12))
	require.NoError(t, err)
	_, err = w.shows.Create(ctx, w.owner, w.input(13, 15))
	require.NoError(t, err)

	end := day.Add(12*time.Hour + 30*time.Minute)
	moved, err := w.shows.Update(ctx, w.owner, first.ID, ShowPatch{EndTime: &end})
	require.NoError(t, err)
	assert.True(t, moved.EndTime.Equal(end))

	end = day.Add(14 * time.Hour)
	_, err = w.shows.Update(ctx, w.owner, first.ID, ShowPatch{EndTime: &end})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}
