package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/observability"
	"github.com/shyam-539/GoTicket-server/internal/repository"
)

// ShowService schedules screenings.  A show is only created when its
// interval does not collide with another non-cancelled show on the same
// screen; the store repeats the check under a lock on the screen.
type ShowService struct {
	theaters TheaterStore
	screens  ScreenStore
	movies   MovieStore
	shows    ShowStore
	gap      time.Duration
	log      observability.Logger
	now      func() time.Time
}

func NewShowService(theaters TheaterStore, screens ScreenStore, movies MovieStore, shows ShowStore,
	gap time.Duration, log observability.Logger) *ShowService {
	return &ShowService{theaters: theaters, screens: screens, movies: movies, shows: shows, gap: gap, log: log, now: time.Now}
}

// ShowInput is the payload of createShow.  Date is optional; when present
// it must be the UTC calendar date of StartTime.
type ShowInput struct {
	TheaterID uint64                     `json:"theaterId" validate:"required"`
	ScreenID  uint64                     `json:"screenId" validate:"required"`
	MovieID   uint64                     `json:"movieId" validate:"required"`
	Date      string                     `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime time.Time                  `json:"startTime" validate:"required"`
	EndTime   time.Time                  `json:"endTime" validate:"required"`
	Language  string                     `json:"language" validate:"max=40"`
	Format    string                     `json:"format" validate:"max=20"`
	Prices    map[string]decimal.Decimal `json:"priceTable" validate:"required,min=1"`
}

// ShowPatch edits a show.  New times are re-checked for overlaps.
type ShowPatch struct {
	StartTime *time.Time                  `json:"startTime"`
	EndTime   *time.Time                  `json:"endTime"`
	Language  *string                     `json:"language" validate:"omitempty,max=40"`
	Format    *string                     `json:"format" validate:"omitempty,max=20"`
	Prices    *map[string]decimal.Decimal `json:"priceTable"`
	Status    *string                     `json:"status" validate:"omitempty,oneof=scheduled ongoing completed cancelled"`
}

// ValidatePrices checks a price table: standard is mandatory, keys must be
// known seat types and prices may not be negative.
func ValidatePrices(p map[string]decimal.Decimal) error {
	if _, ok := p[model.SeatStandard]; !ok {
		return apperr.Invalidf("priceTable must contain a standard price")
	}
	known := []string{model.SeatStandard, model.SeatPremium, model.SeatRecliner, model.SeatWheelchair}
	for k, v := range p {
		if !contains(known, k) {
			return apperr.Invalidf("unknown seat type %q in priceTable", k)
		}
		if v.IsNegative() {
			return apperr.Invalidf("price for %s must not be negative", k)
		}
	}
	return nil
}

func validateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperr.Invalidf("startTime and endTime are required")
	}
	if !end.After(start) {
		return apperr.Invalidf("endTime must be after startTime")
	}
	return nil
}

// Create schedules a show and materialises its seat availability.
func (s *ShowService) Create(ctx context.Context, actor Actor, in ShowInput) (*model.Show, error) {
	ctx, span := observability.Tracer("show").Start(ctx, "show.Create")
	defer span.End()
	span.SetAttributes(attribute.Int64("screen.id", int64(in.ScreenID)))

	if err := validateInterval(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if in.Date != "" && start.Format("2006-01-02") != in.Date {
		return nil, apperr.Invalidf("date %s does not match startTime", in.Date)
	}
	if err := ValidatePrices(in.Prices); err != nil {
		return nil, err
	}
	if _, err := ownedTheater(ctx, s.theaters, actor, in.TheaterID); err != nil {
		return nil, err
	}
	sc, err := s.screens.GetByID(ctx, in.ScreenID)
	if err != nil {
		return nil, err
	}
	if sc.TheaterID != in.TheaterID {
		return nil, apperr.NotFoundf("screen not found in this theater")
	}
	if sc.Status != "active" {
		return nil, apperr.Conflictf("screen is %s", sc.Status)
	}
	m, err := s.movies.GetByID(ctx, in.MovieID)
	if err != nil {
		return nil, err
	}
	if !m.IsApproved {
		return nil, apperr.Invalidf("movie is not approved")
	}

	show := &model.Show{
		TheaterID: in.TheaterID,
		ScreenID:  in.ScreenID,
		MovieID:   in.MovieID,
		StartTime: start,
		EndTime:   end,
		Language:  in.Language,
		Format:    in.Format,
		Prices:    model.PriceTable(in.Prices),
		Status:    model.ShowScheduled,
	}
	if err := s.shows.CreateWithSeats(ctx, show, s.gap); err != nil {
		if apperr.Is(err, apperr.Conflict) {
			observability.ShowConflictsTotal.Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create show")
		return nil, err
	}
	s.log.WithFields(map[string]interface{}{"show_id": show.ID, "screen_id": show.ScreenID}).Info("show scheduled")
	return show, nil
}

func (s *ShowService) Get(ctx context.Context, id uint64) (*model.Show, error) {
	return s.shows.GetByID(ctx, id)
}

// ListByTheater is the public show list of a theater: upcoming shows only.
func (s *ShowService) ListByTheater(ctx context.Context, theaterID uint64) ([]model.Show, error) {
	if _, err := s.theaters.GetByID(ctx, theaterID); err != nil {
		return nil, err
	}
	return s.shows.ListByTheater(ctx, theaterID, true)
}

// Search is the public show search across theaters.
func (s *ShowService) Search(ctx context.Context, q repository.ShowSearchQuery) ([]repository.PublicShowRow, int64, error) {
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	return s.shows.SearchUpcoming(ctx, q)
}

// Seats is the public availability map of a show.
func (s *ShowService) Seats(ctx context.Context, showID uint64) ([]model.SeatAvailability, error) {
	if _, err := s.shows.GetByID(ctx, showID); err != nil {
		return nil, err
	}
	return s.shows.ListSeats(ctx, showID)
}

func (s *ShowService) showFor(ctx context.Context, actor Actor, id uint64) (*model.Show, error) {
	sh, err := s.shows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedTheater(ctx, s.theaters, actor, sh.TheaterID); err != nil {
		return nil, err
	}
	return sh, nil
}

// Update changes times, language, format, prices or status.  Times and
// prices may only change while the show is scheduled.
func (s *ShowService) Update(ctx context.Context, actor Actor, id uint64, p ShowPatch) (*model.Show, error) {
	sh, err := s.showFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	ch := repository.ShowChange{Gap: s.gap}
	if p.StartTime != nil || p.EndTime != nil {
		if sh.Status != model.ShowScheduled {
			return nil, apperr.Conflictf("only scheduled shows can be rescheduled")
		}
		start, end := sh.StartTime, sh.EndTime
		if p.StartTime != nil {
			start = p.StartTime.UTC()
		}
		if p.EndTime != nil {
			end = p.EndTime.UTC()
		}
		if err := validateInterval(start, end); err != nil {
			return nil, err
		}
		ch.Reschedule = !start.Equal(sh.StartTime) || !end.Equal(sh.EndTime)
		sh.StartTime, sh.EndTime = start, end
	}
	if p.Prices != nil {
		if sh.Status != model.ShowScheduled {
			return nil, apperr.Conflictf("only scheduled shows can be repriced")
		}
		if err := ValidatePrices(*p.Prices); err != nil {
			return nil, err
		}
		sh.Prices = model.PriceTable(*p.Prices)
		ch.Reprice = true
	}
	if p.Language != nil {
		sh.Language = *p.Language
	}
	if p.Format != nil {
		sh.Format = *p.Format
	}
	if p.Status != nil {
		if !sh.CanTransition(*p.Status) {
			return nil, apperr.Conflictf("cannot move show from %s to %s", sh.Status, *p.Status)
		}
		sh.Status = *p.Status
	}
	if err := s.shows.Update(ctx, sh, ch); err != nil {
		if apperr.Is(err, apperr.Conflict) && ch.Reschedule {
			observability.ShowConflictsTotal.Inc()
		}
		return nil, err
	}
	return sh, nil
}

// Delete removes a show nobody has booked.
func (s *ShowService) Delete(ctx context.Context, actor Actor, id uint64) error {
	if _, err := s.showFor(ctx, actor, id); err != nil {
		return err
	}
	return s.shows.Delete(ctx, id)
}

// SetSeatStatus lets an owner take a seat out of sale for one show or put
// it back.  Booked seats only change through bookings.
func (s *ShowService) SetSeatStatus(ctx context.Context, actor Actor, showID, seatID uint64, status string) error {
	switch status {
	case model.SeatAvailable, model.SeatReserved, model.SeatMaintenance:
	default:
		return apperr.Invalidf("status must be available, reserved or maintenance")
	}
	sh, err := s.showFor(ctx, actor, showID)
	if err != nil {
		return err
	}
	if sh.Status == model.ShowCompleted || sh.Status == model.ShowCancelled {
		return apperr.Conflictf("show is %s", sh.Status)
	}
	return s.shows.SetSeatStatus(ctx, showID, seatID, status)
}
