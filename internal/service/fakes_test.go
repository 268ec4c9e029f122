package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/queue"
	"github.com/shyam-539/GoTicket-server/internal/repository"
)

// memDB is a process-local stand-in for MySQL.  One mutex guards every
// table so each store call behaves like a single transaction.
type memDB struct {
	mu       sync.Mutex
	next     uint64
	users    map[uint64]model.User
	tokens   map[string]memToken
	theaters map[uint64]model.Theater
	screens  map[uint64]model.Screen
	seats    map[uint64]model.Seat
	movies   map[uint64]model.Movie
	shows    map[uint64]model.Show
	avail    map[uint64][]model.SeatAvailability
	bookings map[uint64]model.Booking
}

type memToken struct {
	userID  uint64
	exp     time.Time
	revoked bool
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[uint64]model.User{},
		tokens:   map[string]memToken{},
		theaters: map[uint64]model.Theater{},
		screens:  map[uint64]model.Screen{},
		seats:    map[uint64]model.Seat{},
		movies:   map[uint64]model.Movie{},
		shows:    map[uint64]model.Show{},
		avail:    map[uint64][]model.SeatAvailability{},
		bookings: map[uint64]model.Booking{},
	}
}

func (db *memDB) id() uint64 {
	db.next++
	return db.next
}

func notFound(what string) error { return apperr.NotFoundf("%s not found", what) }

// ---- users & tokens ----

type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, u *model.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, x := range s.db.users {
		if x.Email == u.Email {
			return apperr.Conflictf("email already exists")
		}
	}
	u.ID = s.db.id()
	u.CreatedAt = time.Now()
	s.db.users[u.ID] = *u
	return nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (s memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (s memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

func (s memUsers) update(id uint64, fn func(u *model.User)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return notFound("user")
	}
	fn(&u)
	s.db.users[id] = u
	return nil
}

func (s memUsers) UpdateProfile(_ context.Context, id uint64, name, phone, pic string) error {
	return s.update(id, func(u *model.User) { u.Name, u.Phone, u.ProfilePic = name, phone, pic })
}

func (s memUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	return s.update(id, func(u *model.User) { u.PasswordHash = hash })
}

func (s memUsers) SetActive(_ context.Context, id uint64, active bool) error {
	return s.update(id, func(u *model.User) { u.IsActive = active })
}

func (s memUsers) SetVerified(_ context.Context, id uint64, verified bool) error {
	return s.update(id, func(u *model.User) { u.IsVerified = verified })
}

func (s memUsers) List(_ context.Context, role string) ([]model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.User{}
	for _, u := range s.db.users {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memUsers) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[id]; !ok {
		return notFound("user")
	}
	delete(s.db.users, id)
	return nil
}

type memTokens struct{ db *memDB }

func (s memTokens) StoreRefresh(_ context.Context, userID uint64, hash string, exp time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tokens[hash] = memToken{userID: userID, exp: exp}
	return nil
}

func (s memTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tokens[hash]
	if !ok || t.revoked || time.Now().After(t.exp) {
		return 0, apperr.Unauthorizedf("Invalid or expired refresh token")
	}
	return t.userID, nil
}

func (s memTokens) RevokeByHash(_ context.Context, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if t, ok := s.db.tokens[hash]; ok {
		t.revoked = true
		s.db.tokens[hash] = t
	}
	return nil
}

func (s memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for h, t := range s.db.tokens {
		if t.userID == userID {
			t.revoked = true
			s.db.tokens[h] = t
		}
	}
	return nil
}

// ---- theaters, screens, seats, movies ----

type memTheaters struct{ db *memDB }

func (s memTheaters) Create(_ context.Context, t *model.Theater) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t.ID = s.db.id()
	s.db.theaters[t.ID] = *t
	return nil
}

func (s memTheaters) GetByID(_ context.Context, id uint64) (*model.Theater, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.theaters[id]
	if !ok {
		return nil, notFound("theater")
	}
	return &t, nil
}

func (s memTheaters) List(_ context.Context, f repository.TheaterFilter) ([]model.Theater, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Theater{}
	for _, t := range s.db.theaters {
		if (f.OwnerID == 0 || t.OwnerID == f.OwnerID) && (f.City == "" || t.City == f.City) &&
			(!f.OnlyApproved || (t.IsApproved && t.IsActive)) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memTheaters) Update(_ context.Context, t *model.Theater) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.theaters[t.ID]; !ok {
		return notFound("theater")
	}
	s.db.theaters[t.ID] = *t
	return nil
}

func (s memTheaters) SetApproved(_ context.Context, id uint64, approved bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.theaters[id]
	if !ok {
		return notFound("theater")
	}
	t.IsApproved = approved
	s.db.theaters[id] = t
	return nil
}

func (s memTheaters) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.theaters, id)
	return nil
}

type memScreens struct{ db *memDB }

func (s memScreens) Create(_ context.Context, sc *model.Screen) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, x := range s.db.screens {
		if x.TheaterID == sc.TheaterID && x.ScreenNumber == sc.ScreenNumber {
			return apperr.Conflictf("screen number already exists")
		}
	}
	sc.ID = s.db.id()
	s.db.screens[sc.ID] = *sc
	return nil
}

func (s memScreens) GetByID(_ context.Context, id uint64) (*model.Screen, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sc, ok := s.db.screens[id]
	if !ok {
		return nil, notFound("screen")
	}
	return &sc, nil
}

func (s memScreens) ListByTheater(_ context.Context, theaterID uint64) ([]model.Screen, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Screen{}
	for _, sc := range s.db.screens {
		if sc.TheaterID == theaterID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScreenNumber < out[j].ScreenNumber })
	return out, nil
}

func (s memScreens) Update(_ context.Context, sc *model.Screen) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.screens[sc.ID] = *sc
	return nil
}

func (s memScreens) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.screens, id)
	return nil
}

type memSeats struct{ db *memDB }

func (s memSeats) CreateBulk(_ context.Context, screenID uint64, seats []model.Seat) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sc, ok := s.db.screens[screenID]
	if !ok {
		return notFound("screen")
	}
	n := 0
	for _, st := range s.db.seats {
		if st.ScreenID == screenID {
			n++
		}
	}
	if n+len(seats) > sc.TotalSeats {
		return apperr.Invalidf("screen holds at most %d seats", sc.TotalSeats)
	}
	for _, st := range seats {
		st.ID = s.db.id()
		st.ScreenID = screenID
		s.db.seats[st.ID] = st
	}
	return nil
}

func (s memSeats) ListByScreen(_ context.Context, screenID uint64) ([]model.Seat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.seatsOf(screenID), nil
}

func (db *memDB) seatsOf(screenID uint64) []model.Seat {
	out := []model.Seat{}
	for _, st := range db.seats {
		if st.ScreenID == screenID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memSeats) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st, ok := s.db.seats[id]
	if !ok {
		return nil, notFound("seat")
	}
	return &st, nil
}

func (s memSeats) Update(_ context.Context, st *model.Seat) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.seats[st.ID] = *st
	return nil
}

func (s memSeats) BulkUpdate(_ context.Context, screenID uint64, updates []repository.SeatUpdate) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range updates {
		if st, ok := s.db.seats[u.ID]; !ok || st.ScreenID != screenID {
			return apperr.NotFoundf("seat %d not found on screen %d", u.ID, screenID)
		}
	}
	for _, u := range updates {
		st := s.db.seats[u.ID]
		if u.SeatType != nil {
			st.SeatType = *u.SeatType
		}
		if u.IsActive != nil {
			st.IsActive = *u.IsActive
		}
		s.db.seats[u.ID] = st
	}
	return nil
}

func (s memSeats) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.seats, id)
	return nil
}

type memMovies struct{ db *memDB }

func (s memMovies) Create(_ context.Context, m *model.Movie) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m.ID = s.db.id()
	m.PublicID = uuid.NewString()
	s.db.movies[m.ID] = *m
	return nil
}

func (s memMovies) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.movies[id]
	if !ok {
		return nil, notFound("movie")
	}
	return &m, nil
}

func (s memMovies) List(_ context.Context, f repository.MovieFilter) ([]model.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Movie{}
	for _, m := range s.db.movies {
		if (!f.OnlyApproved || m.IsApproved) && (f.CreatedBy == 0 || m.CreatedBy == f.CreatedBy) &&
			(f.Status == "" || m.Status == f.Status) && strings.Contains(m.Title, f.Search) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memMovies) Update(_ context.Context, m *model.Movie) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.movies[m.ID] = *m
	return nil
}

func (s memMovies) SetApproved(_ context.Context, id uint64, approved bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.movies[id]
	if !ok {
		return notFound("movie")
	}
	m.IsApproved = approved
	s.db.movies[id] = m
	return nil
}

func (s memMovies) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.movies, id)
	return nil
}

// ---- shows ----

type memShows struct{ db *memDB }

func (s memShows) overlapping(screenID, exclude uint64, start, end time.Time, gap time.Duration) []model.Show {
	var out []model.Show
	for _, sh := range s.db.shows {
		if sh.ScreenID == screenID && sh.ID != exclude && sh.Overlaps(start, end, gap) {
			out = append(out, sh)
		}
	}
	return out
}

func (s memShows) CreateWithSeats(_ context.Context, sh *model.Show, gap time.Duration) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sc, ok := s.db.screens[sh.ScreenID]
	if !ok || sc.TheaterID != sh.TheaterID {
		return apperr.NotFoundf("screen not found in this theater")
	}
	if c := s.overlapping(sh.ScreenID, 0, sh.StartTime, sh.EndTime, gap); len(c) > 0 {
		return repository.ErrShowOverlap(c)
	}
	seats := s.db.seatsOf(sh.ScreenID)
	if len(seats) == 0 {
		return apperr.Invalidf("screen has no seats")
	}
	sh.ID = s.db.id()
	sh.Status = model.ShowScheduled
	rows := make([]model.SeatAvailability, 0, len(seats))
	for _, st := range seats {
		price, _ := sh.Prices.Resolve(st.SeatType)
		status := model.SeatAvailable
		if !st.IsActive {
			status = model.SeatMaintenance
		}
		rows = append(rows, model.SeatAvailability{ShowID: sh.ID, SeatID: st.ID, RowLabel: st.RowLabel,
			SeatNumber: st.SeatNumber, SeatType: st.SeatType, Status: status, Price: price})
	}
	s.db.shows[sh.ID] = *sh
	s.db.avail[sh.ID] = rows
	return nil
}

func (s memShows) GetByID(_ context.Context, id uint64) (*model.Show, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sh, ok := s.db.shows[id]
	if !ok {
		return nil, notFound("show")
	}
	return &sh, nil
}

func (s memShows) ListByTheater(_ context.Context, theaterID uint64, _ bool) ([]model.Show, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Show{}
	for _, sh := range s.db.shows {
		if sh.TheaterID == theaterID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s memShows) bookingsFor(showID uint64) int {
	n := 0
	for _, b := range s.db.bookings {
		if b.ShowID == showID {
			n++
		}
	}
	return n
}

func (s memShows) Update(_ context.Context, sh *model.Show, ch repository.ShowChange) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if (ch.Reschedule || ch.Reprice) && s.bookingsFor(sh.ID) > 0 {
		return apperr.Conflictf("show already has bookings")
	}
	if ch.Reschedule {
		if c := s.overlapping(sh.ScreenID, sh.ID, sh.StartTime, sh.EndTime, ch.Gap); len(c) > 0 {
			return repository.ErrShowOverlap(c)
		}
	}
	s.db.shows[sh.ID] = *sh
	return nil
}

func (s memShows) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.bookingsFor(id) > 0 {
		return apperr.Conflictf("show has bookings and cannot be deleted")
	}
	delete(s.db.shows, id)
	delete(s.db.avail, id)
	return nil
}

func (s memShows) ListSeats(_ context.Context, showID uint64) ([]model.SeatAvailability, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return append([]model.SeatAvailability(nil), s.db.avail[showID]...), nil
}

func (s memShows) SetSeatStatus(_ context.Context, showID, seatID uint64, status string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rows := s.db.avail[showID]
	for i := range rows {
		if rows[i].SeatID == seatID {
			if rows[i].Status == model.SeatBooked {
				return apperr.Conflictf("seat is booked and cannot be changed")
			}
			rows[i].Status = status
			return nil
		}
	}
	return notFound("show seat")
}

func (s memShows) SearchUpcoming(_ context.Context, _ repository.ShowSearchQuery) ([]repository.PublicShowRow, int64, error) {
	return []repository.PublicShowRow{}, 0, nil
}

// ---- bookings ----

type memBookings struct{ db *memDB }

func (s memBookings) Create(_ context.Context, b *model.Booking) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rows := s.db.avail[b.ShowID]
	idx := map[uint64]int{}
	for i, r := range rows {
		idx[r.SeatID] = i
	}
	var lost []string
	for _, st := range b.Seats {
		i, ok := idx[st.SeatID]
		if !ok || rows[i].Status != model.SeatAvailable {
			lost = append(lost, st.Label)
		}
	}
	if len(lost) > 0 {
		return repository.ErrSeatsUnavailable(lost)
	}
	b.ID = s.db.id()
	for _, st := range b.Seats {
		id := b.ID
		rows[idx[st.SeatID]].Status = model.SeatBooked
		rows[idx[st.SeatID]].BookingID = &id
	}
	b.PaymentStatus = model.PaymentPending
	b.BookingStatus = model.BookingConfirmed
	b.CreatedAt = time.Now()
	s.db.bookings[b.ID] = *b
	return nil
}

func (s memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return nil, notFound("booking")
	}
	return &b, nil
}

func (s memBookings) List(_ context.Context, f repository.BookingFilter) ([]model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.db.bookings {
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		if f.ShowID != 0 && b.ShowID != f.ShowID {
			continue
		}
		if f.OwnerID != 0 && s.db.theaters[b.TheaterID].OwnerID != f.OwnerID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s memBookings) release(id uint64, showID uint64) {
	rows := s.db.avail[showID]
	for i := range rows {
		if rows[i].BookingID != nil && *rows[i].BookingID == id {
			rows[i].Status = model.SeatAvailable
			rows[i].BookingID = nil
		}
	}
}

func (s memBookings) Cancel(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return notFound("booking")
	}
	if b.PaymentStatus != model.PaymentPending || b.BookingStatus != model.BookingConfirmed {
		return apperr.Conflictf("only unpaid bookings can be cancelled")
	}
	b.BookingStatus = model.BookingCancelled
	s.db.bookings[id] = b
	s.release(id, b.ShowID)
	return nil
}

func (s memBookings) SetOrder(_ context.Context, id uint64, orderID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok || b.PaymentStatus != model.PaymentPending {
		return apperr.Conflictf("booking is not awaiting payment")
	}
	b.OrderID = orderID
	s.db.bookings[id] = b
	return nil
}

func (s memBookings) MarkPaid(_ context.Context, id uint64, orderID, paymentID string, at time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok || b.OrderID != orderID || b.PaymentStatus != model.PaymentPending || b.BookingStatus != model.BookingConfirmed {
		return false, nil
	}
	b.PaymentStatus = model.PaymentCompleted
	b.PaymentID = paymentID
	b.PaidAt = &at
	s.db.bookings[id] = b
	return true, nil
}

func (s memBookings) Refund(_ context.Context, id uint64, amount decimal.Decimal, reason string, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return notFound("booking")
	}
	if b.PaymentStatus != model.PaymentCompleted {
		return apperr.Conflictf("only completed payments can be refunded")
	}
	b.PaymentStatus = model.PaymentRefunded
	b.BookingStatus = model.BookingCancelled
	b.RefundAmount = &amount
	b.RefundReason = reason
	b.RefundedAt = &at
	s.db.bookings[id] = b
	s.release(id, b.ShowID)
	return nil
}

// ---- side effects ----

type memAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (a *memAudit) Record(_ context.Context, e model.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *memAudit) ListByEntity(_ context.Context, entityID string) ([]model.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []model.AuditEntry{}
	for _, e := range a.entries {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *memAudit) count(action string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, e := range a.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

type memPublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
}

func (p *memPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type sentMail struct{ to, subject, body string }

type memMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *memMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type memNotes struct {
	mu    sync.Mutex
	items []model.Notification
}

func (n *memNotes) Create(_ context.Context, x *model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	x.ID = uuid.NewString()
	n.items = append(n.items, *x)
	return nil
}

func (n *memNotes) List(_ context.Context, unreadOnly bool) ([]model.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := []model.Notification{}
	for _, x := range n.items {
		if !unreadOnly || !x.IsRead {
			out = append(out, x)
		}
	}
	return out, nil
}

func (n *memNotes) MarkRead(_ context.Context, id string) (*model.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.items {
		if n.items[i].ID == id {
			n.items[i].IsRead = true
			x := n.items[i]
			return &x, nil
		}
	}
	return nil, notFound("notification")
}
