package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

func TestTheaterOwnership(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	stranger := Actor{ID: 2002, Role: model.RoleTheaterOwner}

	assert.False(t, w.theater.IsApproved, "owner theaters wait for approval")
	byAdmin, err := w.catalog.CreateTheater(ctx, w.admin, TheaterInput{Name: "Plaza", Address: "2 High St", City: "Goa"})
	require.NoError(t, err)
	assert.True(t, byAdmin.IsApproved)

	name := "Hijacked"
	_, err = w.catalog.UpdateTheater(ctx, stranger, w.theater.ID, TheaterPatch{Name: &name})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(w.catalog.DeleteTheater(ctx, stranger, w.theater.ID)))

	name = "  Regal Gold "
	updated, err := w.catalog.UpdateTheater(ctx, w.admin, w.theater.ID, TheaterPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Regal Gold", updated.Name)

	mine, err := w.catalog.ListTheaters(ctx, stranger, "")
	require.NoError(t, err)
	assert.Empty(t, mine)
	all, err := w.catalog.ListTheaters(ctx, w.admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestScreenRules(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	assert.Equal(t, 10, w.screen.TotalSeats, "derived from the grid")
	assert.Equal(t, "standard", w.screen.ScreenType)
	assert.Equal(t, "active", w.screen.Status)

	_, err := w.catalog.CreateScreen(ctx, w.owner, ScreenInput{TheaterID: w.theater.ID, Name: "Dup", ScreenNumber: 1, TotalSeats: 4})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, err = w.catalog.CreateScreen(ctx, w.owner, ScreenInput{TheaterID: w.theater.ID, Name: "Tiny", ScreenNumber: 2, Rows: 2, Columns: 2, TotalSeats: 5})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = w.catalog.CreateScreen(ctx, w.owner, ScreenInput{TheaterID: w.theater.ID, Name: "Empty", ScreenNumber: 3})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = w.catalog.CreateScreen(ctx, Actor{ID: 77, Role: model.RoleTheaterOwner},
		ScreenInput{TheaterID: w.theater.ID, Name: "Other", ScreenNumber: 4, TotalSeats: 4})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestSeatRules(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	for name, in := range map[string][]SeatInput{
		"bad row":   {{RowLabel: "1", SeatNumber: 1}},
		"duplicate": {{RowLabel: "C", SeatNumber: 1}, {RowLabel: "c", SeatNumber: 1}},
		"capacity":  {{RowLabel: "C", SeatNumber: 1}, {RowLabel: "C", SeatNumber: 2}, {RowLabel: "C", SeatNumber: 3}, {RowLabel: "C", SeatNumber: 4}, {RowLabel: "C", SeatNumber: 5}},
	} {
		_, err := w.catalog.CreateSeats(ctx, w.owner, SeatsInput{ScreenID: w.screen.ID, Seats: in})
		assert.Equal(t, apperr.Validation, apperr.KindOf(err), name)
	}

	seats, err := w.catalog.CreateSeats(ctx, w.owner, SeatsInput{ScreenID: w.screen.ID, Seats: []SeatInput{{RowLabel: " c", SeatNumber: 7}}})
	require.NoError(t, err)
	require.Len(t, seats, 7)
	last := seats[len(seats)-1]
	assert.Equal(t, "C7", last.Label())
	assert.Equal(t, model.SeatStandard, last.SeatType)
	assert.True(t, last.IsActive)

	premium := model.SeatPremium
	off := false
	updated, err := w.catalog.BulkUpdateSeats(ctx, w.owner, BulkSeatUpdateInput{ScreenID: w.screen.ID, Updates: []SeatUpdateInput{
		{ID: last.ID, SeatType: &premium, IsActive: &off},
	}})
	require.NoError(t, err)
	assert.Equal(t, model.SeatPremium, updated[len(updated)-1].SeatType)
	assert.False(t, updated[len(updated)-1].IsActive)

	_, err = w.catalog.BulkUpdateSeats(ctx, w.owner, BulkSeatUpdateInput{ScreenID: w.screen.ID, Updates: []SeatUpdateInput{{ID: 999999, IsActive: &off}}})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	public, err := w.catalog.ListScreenSeats(ctx, w.screen.ID)
	require.NoError(t, err)
	assert.Len(t, public, 7)
}

func TestMovieApprovalFlow(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()
	stranger := Actor{ID: 2002, Role: model.RoleTheaterOwner}

	m, err := w.catalog.CreateMovie(ctx, w.owner, MovieInput{Title: "Arrival", DurationMin: 116, ReleaseDate: "2016-11-11"})
	require.NoError(t, err)
	assert.False(t, m.IsApproved)
	assert.Equal(t, "UA", m.Certificate)
	assert.Equal(t, "coming_soon", m.Status)
	require.NotNil(t, m.ReleaseDate)

	_, err = w.catalog.GetMovie(ctx, nil, m.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err), "hidden from the public")
	_, err = w.catalog.GetMovie(ctx, &stranger, m.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	_, err = w.catalog.GetMovie(ctx, &w.owner, m.ID)
	assert.NoError(t, err)

	public, err := w.catalog.ListMovies(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, public, 1, "only the approved movie from the fixture")

	approved, err := w.catalog.ApproveMovie(ctx, m.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	title := "Arrival (2016)"
	_, err = w.catalog.UpdateMovie(ctx, stranger, m.ID, MoviePatch{Title: &title})
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	edited, err := w.catalog.UpdateMovie(ctx, w.owner, m.ID, MoviePatch{Title: &title})
	require.NoError(t, err)
	assert.False(t, edited.IsApproved, "owner edits need approval again")

	_, err = w.catalog.ApproveMovie(ctx, m.ID, true)
	require.NoError(t, err)
	byAdmin, err := w.catalog.UpdateMovie(ctx, w.admin, m.ID, MoviePatch{Title: &title})
	require.NoError(t, err)
	assert.True(t, byAdmin.IsApproved)

	bad := "11/11/2016"
	_, err = w.catalog.UpdateMovie(ctx, w.admin, m.ID, MoviePatch{ReleaseDate: &bad})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	mine, err := w.catalog.MyMovies(ctx, w.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
