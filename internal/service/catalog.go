package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/repository"
)

// CatalogService manages the static reference data: theaters, their
// screens and seats, and the movie catalogue.
type CatalogService struct {
	theaters TheaterStore
	screens  ScreenStore
	seats    SeatStore
	movies   MovieStore
}

func NewCatalogService(theaters TheaterStore, screens ScreenStore, seats SeatStore, movies MovieStore) *CatalogService {
	return &CatalogService{theaters: theaters, screens: screens, seats: seats, movies: movies}
}

// ---- theaters ----

type TheaterInput struct {
	Name         string `json:"name" validate:"required,max=150"`
	Address      string `json:"address" validate:"required,max=255"`
	City         string `json:"city" validate:"required,max=100"`
	ContactPhone string `json:"contactPhone" validate:"omitempty,max=20"`
}

type TheaterPatch struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=150"`
	Address      *string `json:"address" validate:"omitempty,min=1,max=255"`
	City         *string `json:"city" validate:"omitempty,min=1,max=100"`
	ContactPhone *string `json:"contactPhone" validate:"omitempty,max=20"`
	IsActive     *bool   `json:"isActive"`
}

// CreateTheater registers a theater owned by the actor.  Theaters created
// by an admin are approved straight away.
func (s *CatalogService) CreateTheater(ctx context.Context, actor Actor, in TheaterInput) (*model.Theater, error) {
	t := &model.Theater{
		OwnerID:      actor.ID,
		Name:         strings.TrimSpace(in.Name),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
		IsApproved:   actor.IsAdmin(),
		IsActive:     true,
	}
	if err := s.theaters.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTheaters returns every theater to an admin and the caller's own
// theaters to an owner.
func (s *CatalogService) ListTheaters(ctx context.Context, actor Actor, city string) ([]model.Theater, error) {
	f := repository.TheaterFilter{City: city}
	if !actor.IsAdmin() {
		f.OwnerID = actor.ID
	}
	return s.theaters.List(ctx, f)
}

func (s *CatalogService) GetTheater(ctx context.Context, actor Actor, id uint64) (*model.Theater, error) {
	return ownedTheater(ctx, s.theaters, actor, id)
}

func (s *CatalogService) UpdateTheater(ctx context.Context, actor Actor, id uint64, p TheaterPatch) (*model.Theater, error) {
	t, err := ownedTheater(ctx, s.theaters, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Address != nil {
		t.Address = strings.TrimSpace(*p.Address)
	}
	if p.City != nil {
		t.City = strings.TrimSpace(*p.City)
	}
	if p.ContactPhone != nil {
		t.ContactPhone = strings.TrimSpace(*p.ContactPhone)
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	if err := s.theaters.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) DeleteTheater(ctx context.Context, actor Actor, id uint64) error {
	if _, err := ownedTheater(ctx, s.theaters, actor, id); err != nil {
		return err
	}
	return s.theaters.Delete(ctx, id)
}

// ---- screens ----

type ScreenInput struct {
	TheaterID    uint64 `json:"theaterId" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
	ScreenNumber int    `json:"screenNumber" validate:"required,min=1"`
	ScreenType   string `json:"screenType" validate:"omitempty,oneof=standard imax 3d 4dx premium"`
	Rows         int    `json:"rows" validate:"min=0,max=100"`
	Columns      int    `json:"columns" validate:"min=0,max=100"`
	TotalSeats   int    `json:"totalSeats" validate:"min=0"`
	Status       string `json:"status" validate:"omitempty,oneof=active maintenance inactive"`
}

type ScreenPatch struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	ScreenNumber *int    `json:"screenNumber" validate:"omitempty,min=1"`
	ScreenType   *string `json:"screenType" validate:"omitempty,oneof=standard imax 3d 4dx premium"`
	Rows         *int    `json:"rows" validate:"omitempty,min=0,max=100"`
	Columns      *int    `json:"columns" validate:"omitempty,min=0,max=100"`
	TotalSeats   *int    `json:"totalSeats" validate:"omitempty,min=1"`
	Status       *string `json:"status" validate:"omitempty,oneof=active maintenance inactive"`
}

// CreateScreen adds a screen to a theater the actor manages.  When
// totalSeats is omitted it is derived from the grid.
func (s *CatalogService) CreateScreen(ctx context.Context, actor Actor, in ScreenInput) (*model.Screen, error) {
	if _, err := ownedTheater(ctx, s.theaters, actor, in.TheaterID); err != nil {
		return nil, err
	}
	sc := &model.Screen{
		TheaterID:    in.TheaterID,
		Name:         strings.TrimSpace(in.Name),
		ScreenNumber: in.ScreenNumber,
		ScreenType:   in.ScreenType,
		Rows:         in.Rows,
		Columns:      in.Columns,
		TotalSeats:   in.TotalSeats,
		Status:       in.Status,
	}
	if sc.ScreenType == "" {
		sc.ScreenType = model.ScreenTypes[0]
	}
	if sc.Status == "" {
		sc.Status = model.ScreenStatuses[0]
	}
	if sc.TotalSeats == 0 {
		sc.TotalSeats = sc.Rows * sc.Columns
	}
	if err := validateScreen(sc); err != nil {
		return nil, err
	}
	if err := s.screens.Create(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func validateScreen(sc *model.Screen) error {
	if sc.TotalSeats <= 0 {
		return apperr.Invalidf("totalSeats must be positive")
	}
	if sc.Rows > 0 && sc.Columns > 0 && sc.TotalSeats > sc.Rows*sc.Columns {
		return apperr.Invalidf("totalSeats exceeds rows x columns (%d)", sc.Rows*sc.Columns)
	}
	return nil
}

// screenFor loads a screen and checks the actor manages its theater.
func (s *CatalogService) screenFor(ctx context.Context, actor Actor, id uint64) (*model.Screen, error) {
	sc, err := s.screens.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := ownedTheater(ctx, s.theaters, actor, sc.TheaterID); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *CatalogService) ListScreens(ctx context.Context, actor Actor, theaterID uint64) ([]model.Screen, error) {
	if _, err := ownedTheater(ctx, s.theaters, actor, theaterID); err != nil {
		return nil, err
	}
	return s.screens.ListByTheater(ctx, theaterID)
}

func (s *CatalogService) UpdateScreen(ctx context.Context, actor Actor, id uint64, p ScreenPatch) (*model.Screen, error) {
	sc, err := s.screenFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		sc.Name = strings.TrimSpace(*p.Name)
	}
	if p.ScreenNumber != nil {
		sc.ScreenNumber = *p.ScreenNumber
	}
	if p.ScreenType != nil {
		sc.ScreenType = *p.ScreenType
	}
	if p.Rows != nil {
		sc.Rows = *p.Rows
	}
	if p.Columns != nil {
		sc.Columns = *p.Columns
	}
	if p.TotalSeats != nil {
		sc.TotalSeats = *p.TotalSeats
	}
	if p.Status != nil {
		sc.Status = *p.Status
	}
	if err := validateScreen(sc); err != nil {
		return nil, err
	}
	if err := s.screens.Update(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *CatalogService) DeleteScreen(ctx context.Context, actor Actor, id uint64) error {
	if _, err := s.screenFor(ctx, actor, id); err != nil {
		return err
	}
	return s.screens.Delete(ctx, id)
}

// ---- seats ----

var rowLabelRe = regexp.MustCompile(`^[A-Z]{1,3}$`)

type SeatInput struct {
	RowLabel   string `json:"rowLabel" validate:"required,max=3"`
	SeatNumber int    `json:"seatNumber" validate:"required,min=1,max=999"`
	SeatType   string `json:"seatType" validate:"omitempty,oneof=standard premium recliner wheelchair"`
	IsActive   *bool  `json:"isActive"`
}

type SeatsInput struct {
	ScreenID uint64      `json:"screenId" validate:"required"`
	Seats    []SeatInput `json:"seats" validate:"required,min=1,dive"`
}

type SeatPatch struct {
	RowLabel   *string `json:"rowLabel" validate:"omitempty,max=3"`
	SeatNumber *int    `json:"seatNumber" validate:"omitempty,min=1,max=999"`
	SeatType   *string `json:"seatType" validate:"omitempty,oneof=standard premium recliner wheelchair"`
	IsActive   *bool   `json:"isActive"`
}

type SeatUpdateInput struct {
	ID       uint64  `json:"id" validate:"required"`
	SeatType *string `json:"seatType" validate:"omitempty,oneof=standard premium recliner wheelchair"`
	IsActive *bool   `json:"isActive"`
}

type BulkSeatUpdateInput struct {
	ScreenID uint64            `json:"screenId" validate:"required"`
	Updates  []SeatUpdateInput `json:"updates" validate:"required,min=1,dive"`
}

// CreateSeats adds seats to a screen.  Labels must be unique within the
// request; uniqueness against stored seats and the screen capacity are
// enforced by the store.
func (s *CatalogService) CreateSeats(ctx context.Context, actor Actor, in SeatsInput) ([]model.Seat, error) {
	if _, err := s.screenFor(ctx, actor, in.ScreenID); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(in.Seats))
	seats := make([]model.Seat, 0, len(in.Seats))
	for _, si := range in.Seats {
		row := strings.ToUpper(strings.TrimSpace(si.RowLabel))
		if !rowLabelRe.MatchString(row) {
			return nil, apperr.Invalidf("invalid row label %q", si.RowLabel)
		}
		label := model.SeatLabel(row, si.SeatNumber)
		if seen[label] {
			return nil, apperr.Invalidf("duplicate seat %s", label)
		}
		seen[label] = true
		st := model.Seat{ScreenID: in.ScreenID, RowLabel: row, SeatNumber: si.SeatNumber, SeatType: si.SeatType, IsActive: true}
		if st.SeatType == "" {
			st.SeatType = model.SeatStandard
		}
		if si.IsActive != nil {
			st.IsActive = *si.IsActive
		}
		seats = append(seats, st)
	}
	if err := s.seats.CreateBulk(ctx, in.ScreenID, seats); err != nil {
		return nil, err
	}
	return s.seats.ListByScreen(ctx, in.ScreenID)
}

// ListScreenSeats is the public seat layout of a screen.
func (s *CatalogService) ListScreenSeats(ctx context.Context, screenID uint64) ([]model.Seat, error) {
	if _, err := s.screens.GetByID(ctx, screenID); err != nil {
		return nil, err
	}
	return s.seats.ListByScreen(ctx, screenID)
}

func (s *CatalogService) seatFor(ctx context.Context, actor Actor, id uint64) (*model.Seat, error) {
	st, err := s.seats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.screenFor(ctx, actor, st.ScreenID); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *CatalogService) UpdateSeat(ctx context.Context, actor Actor, id uint64, p SeatPatch) (*model.Seat, error) {
	st, err := s.seatFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.RowLabel != nil {
		row := strings.ToUpper(strings.TrimSpace(*p.RowLabel))
		if !rowLabelRe.MatchString(row) {
			return nil, apperr.Invalidf("invalid row label %q", *p.RowLabel)
		}
		st.RowLabel = row
	}
	if p.SeatNumber != nil {
		st.SeatNumber = *p.SeatNumber
	}
	if p.SeatType != nil {
		st.SeatType = *p.SeatType
	}
	if p.IsActive != nil {
		st.IsActive = *p.IsActive
	}
	if err := s.seats.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// BulkUpdateSeats changes type or active flag of many seats of one screen
// atomically.
func (s *CatalogService) BulkUpdateSeats(ctx context.Context, actor Actor, in BulkSeatUpdateInput) ([]model.Seat, error) {
	if _, err := s.screenFor(ctx, actor, in.ScreenID); err != nil {
		return nil, err
	}
	updates := make([]repository.SeatUpdate, 0, len(in.Updates))
	for _, u := range in.Updates {
		updates = append(updates, repository.SeatUpdate{ID: u.ID, SeatType: u.SeatType, IsActive: u.IsActive})
	}
	if err := s.seats.BulkUpdate(ctx, in.ScreenID, updates); err != nil {
		return nil, err
	}
	return s.seats.ListByScreen(ctx, in.ScreenID)
}

func (s *CatalogService) DeleteSeat(ctx context.Context, actor Actor, id uint64) error {
	if _, err := s.seatFor(ctx, actor, id); err != nil {
		return err
	}
	return s.seats.Delete(ctx, id)
}

// ---- movies ----

type MovieInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	DurationMin int      `json:"durationMin" validate:"required,min=1,max=600"`
	ReleaseDate string   `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Languages   []string `json:"languages" validate:"omitempty,dive,min=1,max=40"`
	Genres      []string `json:"genres" validate:"omitempty,dive,min=1,max=40"`
	Cast        []string `json:"cast" validate:"omitempty,dive,min=1,max=100"`
	Director    string   `json:"director" validate:"max=150"`
	Certificate string   `json:"certificate" validate:"omitempty,oneof=U UA A S"`
	PosterURL   string   `json:"posterUrl" validate:"omitempty,url,max=500"`
	TrailerURL  string   `json:"trailerUrl" validate:"omitempty,url,max=500"`
	Status      string   `json:"status" validate:"omitempty,oneof=now_showing coming_soon archived"`
}

type MoviePatch struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	DurationMin *int      `json:"durationMin" validate:"omitempty,min=1,max=600"`
	ReleaseDate *string   `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Languages   *[]string `json:"languages"`
	Genres      *[]string `json:"genres"`
	Cast        *[]string `json:"cast"`
	Director    *string   `json:"director" validate:"omitempty,max=150"`
	Certificate *string   `json:"certificate" validate:"omitempty,oneof=U UA A S"`
	PosterURL   *string   `json:"posterUrl" validate:"omitempty,url,max=500"`
	TrailerURL  *string   `json:"trailerUrl" validate:"omitempty,url,max=500"`
	Status      *string   `json:"status" validate:"omitempty,oneof=now_showing coming_soon archived"`
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperr.Invalidf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// CreateMovie adds a movie.  Admin movies are approved on creation; owner
// movies wait for approval.
func (s *CatalogService) CreateMovie(ctx context.Context, actor Actor, in MovieInput) (*model.Movie, error) {
	release, err := parseDate(in.ReleaseDate)
	if err != nil {
		return nil, err
	}
	m := &model.Movie{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DurationMin: in.DurationMin,
		ReleaseDate: release,
		Languages:   in.Languages,
		Genres:      in.Genres,
		Cast:        in.Cast,
		Director:    in.Director,
		Certificate: in.Certificate,
		PosterURL:   in.PosterURL,
		TrailerURL:  in.TrailerURL,
		Status:      in.Status,
		CreatedBy:   actor.ID,
		CreatorRole: actor.Role,
		IsApproved:  actor.IsAdmin(),
	}
	if m.Certificate == "" {
		m.Certificate = "UA"
	}
	if m.Status == "" {
		m.Status = "coming_soon"
	}
	if err := s.movies.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMovies is the public catalogue: approved movies only.
func (s *CatalogService) ListMovies(ctx context.Context, status, search string) ([]model.Movie, error) {
	return s.movies.List(ctx, repository.MovieFilter{OnlyApproved: true, Status: status, Search: search})
}

// GetMovie returns an approved movie.  Unapproved movies are only visible
// to their creator and admins; everybody else gets a 404.
func (s *CatalogService) GetMovie(ctx context.Context, viewer *Actor, id uint64) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsApproved && (viewer == nil || (!viewer.IsAdmin() && viewer.ID != m.CreatedBy)) {
		return nil, apperr.NotFoundf("movie not found")
	}
	return m, nil
}

// MyMovies lists the movies the actor created; admins see every movie.
func (s *CatalogService) MyMovies(ctx context.Context, actor Actor) ([]model.Movie, error) {
	f := repository.MovieFilter{}
	if !actor.IsAdmin() {
		f.CreatedBy = actor.ID
	}
	return s.movies.List(ctx, f)
}

func (s *CatalogService) movieFor(ctx context.Context, actor Actor, id uint64) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && m.CreatedBy != actor.ID {
		return nil, apperr.Forbiddenf("Only the creator or an admin can modify this movie")
	}
	return m, nil
}

// UpdateMovie edits a movie.  An edit by a theater owner sends the movie
// back for approval.
func (s *CatalogService) UpdateMovie(ctx context.Context, actor Actor, id uint64, p MoviePatch) (*model.Movie, error) {
	m, err := s.movieFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		m.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.DurationMin != nil {
		m.DurationMin = *p.DurationMin
	}
	if p.ReleaseDate != nil {
		if m.ReleaseDate, err = parseDate(*p.ReleaseDate); err != nil {
			return nil, err
		}
	}
	if p.Languages != nil {
		m.Languages = *p.Languages
	}
	if p.Genres != nil {
		m.Genres = *p.Genres
	}
	if p.Cast != nil {
		m.Cast = *p.Cast
	}
	if p.Director != nil {
		m.Director = *p.Director
	}
	if p.Certificate != nil {
		m.Certificate = *p.Certificate
	}
	if p.PosterURL != nil {
		m.PosterURL = *p.PosterURL
	}
	if p.TrailerURL != nil {
		m.TrailerURL = *p.TrailerURL
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	if !actor.IsAdmin() {
		m.IsApproved = false
	}
	if err := s.movies.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CatalogService) DeleteMovie(ctx context.Context, actor Actor, id uint64) error {
	if _, err := s.movieFor(ctx, actor, id); err != nil {
		return err
	}
	return s.movies.Delete(ctx, id)
}

// ApproveMovie sets the approval flag.  Callers must be admins.
func (s *CatalogService) ApproveMovie(ctx context.Context, id uint64, approved bool) (*model.Movie, error) {
	if err := s.movies.SetApproved(ctx, id, approved); err != nil {
		return nil, err
	}
	return s.movies.GetByID(ctx, id)
}
