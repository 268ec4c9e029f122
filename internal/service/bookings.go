package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/observability"
	"github.com/shyam-539/GoTicket-server/internal/receipt"
	"github.com/shyam-539/GoTicket-server/internal/repository"
)

var seatLabelRe = regexp.MustCompile(`^[A-Z]{1,3}[0-9]{1,3}$`)

// BookingInput is the payload of bookShow.
type BookingInput struct {
	ShowID    uint64   `json:"showId" validate:"required"`
	TheaterID uint64   `json:"theaterId" validate:"required"`
	SeatType  string   `json:"seatType" validate:"omitempty,oneof=standard premium recliner wheelchair"`
	Seats     []string `json:"selectedSeats" validate:"required,min=1"`
}

// BookingService reserves seats.  No seat is ever sold twice: the store
// flips each seat with a conditional update inside one transaction and
// rolls everything back when any seat was taken in the meantime.
type BookingService struct {
	shows    ShowStore
	theaters TheaterStore
	bookings BookingStore
	audit    AuditStore
	maxSeats int
	currency string
	log      observability.Logger
	now      func() time.Time
}

func NewBookingService(shows ShowStore, theaters TheaterStore, bookings BookingStore, audit AuditStore,
	maxSeats int, currency string, log observability.Logger) *BookingService {
	if maxSeats <= 0 {
		maxSeats = 10
	}
	return &BookingService{shows: shows, theaters: theaters, bookings: bookings, audit: audit,
		maxSeats: maxSeats, currency: currency, log: log, now: time.Now}
}

// NormalizeSeatLabels upper-cases and validates a seat selection.
func NormalizeSeatLabels(labels []string, max int) ([]string, error) {
	if len(labels) == 0 {
		return nil, apperr.Invalidf("select at least one seat")
	}
	if len(labels) > max {
		return nil, apperr.Invalidf("at most %d seats can be booked at once", max)
	}
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		l = strings.ToUpper(strings.TrimSpace(l))
		if !seatLabelRe.MatchString(l) {
			return nil, apperr.Invalidf("invalid seat label %q", l)
		}
		if seen[l] {
			return nil, apperr.Invalidf("seat %s selected twice", l)
		}
		seen[l] = true
		out = append(out, l)
	}
	return out, nil
}

// Book reserves the selected seats of a show for the actor.
func (s *BookingService) Book(ctx context.Context, actor Actor, in BookingInput) (*model.Booking, error) {
	ctx, span := observability.Tracer("booking").Start(ctx, "booking.Book")
	defer span.End()
	span.SetAttributes(attribute.Int64("show.id", int64(in.ShowID)), attribute.Int("seats", len(in.Seats)))

	b, err := s.book(ctx, actor, in)
	result := "ok"
	switch {
	case err == nil:
	case apperr.Is(err, apperr.Conflict):
		result = "conflict"
	case apperr.Is(err, apperr.Validation), apperr.Is(err, apperr.NotFound):
		result = "rejected"
	default:
		result = "error"
	}
	observability.BookingsTotal.WithLabelValues(result).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("booking.id", int64(b.ID)))
	s.record(ctx, "booking.created", actor.ID, b, nil)
	return b, nil
}

func (s *BookingService) book(ctx context.Context, actor Actor, in BookingInput) (*model.Booking, error) {
	labels, err := NormalizeSeatLabels(in.Seats, s.maxSeats)
	if err != nil {
		return nil, err
	}
	show, err := s.shows.GetByID(ctx, in.ShowID)
	if err != nil {
		return nil, err
	}
	if show.TheaterID != in.TheaterID {
		return nil, apperr.NotFoundf("show not found in this theater")
	}
	if show.Status != model.ShowScheduled || !s.now().Before(show.StartTime) {
		return nil, apperr.Conflictf("show is no longer open for booking")
	}

	layout, err := s.shows.ListSeats(ctx, show.ID)
	if err != nil {
		return nil, err
	}
	byLabel := make(map[string]model.SeatAvailability, len(layout))
	for _, a := range layout {
		byLabel[a.Label()] = a
	}

	var (
		seats []model.BookingSeat
		taken []string
		total = decimal.Zero
	)
	for _, l := range labels {
		a, ok := byLabel[l]
		if !ok {
			return nil, apperr.Invalidf("seat %s does not exist for this show", l)
		}
		if in.SeatType != "" && a.SeatType != in.SeatType {
			return nil, apperr.Invalidf("seat %s is %s, not %s", l, a.SeatType, in.SeatType)
		}
		if a.Status != model.SeatAvailable {
			taken = append(taken, l)
			continue
		}
		seats = append(seats, model.BookingSeat{SeatID: a.SeatID, Label: l, SeatType: a.SeatType, Price: a.Price})
		total = total.Add(a.Price)
	}
	if len(taken) > 0 {
		return nil, repository.ErrSeatsUnavailable(taken)
	}

	b := &model.Booking{
		Reference:   uuid.NewString(),
		UserID:      actor.ID,
		ShowID:      show.ID,
		MovieID:     show.MovieID,
		TheaterID:   show.TheaterID,
		Seats:       seats,
		TotalAmount: total,
		Currency:    s.currency,
	}
	b.ReceiptToken, err = receipt.Encode(receipt.Token{
		Reference: b.Reference,
		UserID:    b.UserID,
		ShowID:    b.ShowID,
		TheaterID: b.TheaterID,
		Seats:     labels,
		Amount:    total.StringFixed(2),
		Currency:  b.Currency,
		ShowTime:  show.StartTime.UTC(),
		IssuedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// record writes an audit entry.  Failures are logged, never returned.
func (s *BookingService) record(ctx context.Context, action string, actor uint64, b *model.Booking, extra map[string]interface{}) {
	recordAudit(ctx, s.audit, s.log, action, actor, b, extra)
}

func recordAudit(ctx context.Context, audit AuditStore, log observability.Logger, action string, actor uint64,
	b *model.Booking, extra map[string]interface{}) {
	if audit == nil {
		return
	}
	data := map[string]interface{}{
		"reference":     b.Reference,
		"showId":        b.ShowID,
		"seats":         b.Labels(),
		"totalAmount":   b.TotalAmount.StringFixed(2),
		"paymentStatus": b.PaymentStatus,
		"bookingStatus": b.BookingStatus,
	}
	for k, v := range extra {
		data[k] = v
	}
	err := audit.Record(ctx, model.AuditEntry{
		Action:   action,
		ActorID:  actor,
		EntityID: bookingEntity(b.ID),
		Data:     data,
	})
	if err != nil {
		log.WithError(err).WithField("action", action).Warn("audit entry dropped")
	}
}

func bookingEntity(id uint64) string {
	return "booking:" + strconv.FormatUint(id, 10)
}

// Get returns a booking to its owner, the owner of its theater or an
// admin.
func (s *BookingService) Get(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || b.UserID == actor.ID {
		return b, nil
	}
	if actor.Role == model.RoleTheaterOwner {
		t, err := s.theaters.GetByID(ctx, b.TheaterID)
		if err == nil && t.OwnerID == actor.ID {
			return b, nil
		}
	}
	return nil, apperr.NotFoundf("booking not found")
}

func (s *BookingService) ListMine(ctx context.Context, actor Actor) ([]model.Booking, error) {
	return s.bookings.List(ctx, repository.BookingFilter{UserID: actor.ID})
}

// ListForOwner returns bookings made on the actor's theaters, optionally
// for one show.  Admins see every booking.
func (s *BookingService) ListForOwner(ctx context.Context, actor Actor, showID uint64) ([]model.Booking, error) {
	f := repository.BookingFilter{ShowID: showID}
	if !actor.IsAdmin() {
		f.OwnerID = actor.ID
	}
	return s.bookings.List(ctx, f)
}

// Cancel cancels the actor's unpaid booking and frees its seats.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.NotFoundf("booking not found")
	}
	if b.PaymentStatus != model.PaymentPending || b.BookingStatus != model.BookingConfirmed {
		return nil, apperr.Conflictf("only unpaid bookings can be cancelled")
	}
	if err := s.bookings.Cancel(ctx, id); err != nil {
		return nil, err
	}
	b, err = s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "booking.cancelled", actor.ID, b, nil)
	return b, nil
}

// ReceiptQR renders the booking's receipt token as a PNG QR code.
func (s *BookingService) ReceiptQR(ctx context.Context, actor Actor, id uint64, size int) ([]byte, error) {
	b, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.BookingStatus == model.BookingCancelled {
		return nil, apperr.Conflictf("booking is cancelled")
	}
	return receipt.QRCode(b.ReceiptToken, size)
}
