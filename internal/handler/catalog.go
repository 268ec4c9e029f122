package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/service"
)

// CatalogHandler serves theaters, screens, seats and movies.
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ---- theaters ----

func (h *CatalogHandler) CreateTheater(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.TheaterInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.svc.CreateTheater(ctx, a, in)
	if err != nil {
		return err
	}
	return created(c, "Theater created", t)
}

// ListTheaters returns the caller's theaters; admins see all of them.
func (h *CatalogHandler) ListTheaters(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListTheaters(ctx, a, c.QueryParam("city"))
	if err != nil {
		return err
	}
	return respond(c, list)
}

func (h *CatalogHandler) GetTheater(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.svc.GetTheater(ctx, a, id)
	if err != nil {
		return err
	}
	return respond(c, t)
}

func (h *CatalogHandler) UpdateTheater(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.TheaterPatch
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.svc.UpdateTheater(ctx, a, id, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Theater updated", t)
}

func (h *CatalogHandler) DeleteTheater(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.DeleteTheater(ctx, a, id); err != nil {
		return err
	}
	return done(c, "Theater deleted")
}

// ---- screens ----

func (h *CatalogHandler) CreateScreen(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.ScreenInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.svc.CreateScreen(ctx, a, in)
	if err != nil {
		return err
	}
	return created(c, "Screen created", sc)
}

func (h *CatalogHandler) ListScreens(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	theaterID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListScreens(ctx, a, theaterID)
	if err != nil {
		return err
	}
	return respond(c, list)
}

func (h *CatalogHandler) UpdateScreen(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.ScreenPatch
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sc, err := h.svc.UpdateScreen(ctx, a, id, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Screen updated", sc)
}

func (h *CatalogHandler) DeleteScreen(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.DeleteScreen(ctx, a, id); err != nil {
		return err
	}
	return done(c, "Screen deleted")
}

// ---- seats ----

func (h *CatalogHandler) CreateSeats(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.SeatsInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.svc.CreateSeats(ctx, a, in)
	if err != nil {
		return err
	}
	return created(c, "Seats created", seats)
}

// ScreenSeats is the public seat layout of a screen.
func (h *CatalogHandler) ScreenSeats(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.svc.ListScreenSeats(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, seats)
}

func (h *CatalogHandler) UpdateSeat(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.SeatPatch
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.svc.UpdateSeat(ctx, a, id, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Seat updated", st)
}

func (h *CatalogHandler) BulkUpdateSeats(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.BulkSeatUpdateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.svc.BulkUpdateSeats(ctx, a, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Seats updated", seats)
}

func (h *CatalogHandler) DeleteSeat(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.DeleteSeat(ctx, a, id); err != nil {
		return err
	}
	return done(c, "Seat deleted")
}

// ---- movies ----

func (h *CatalogHandler) CreateMovie(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.MovieInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.svc.CreateMovie(ctx, a, in)
	if err != nil {
		return err
	}
	msg := "Movie created"
	if !m.IsApproved {
		msg = "Movie created, awaiting admin approval"
	}
	return created(c, msg, m)
}

// ListMovies is the public catalogue: approved movies only.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListMovies(ctx, c.QueryParam("status"), c.QueryParam("search"))
	if err != nil {
		return err
	}
	return respond(c, list)
}

func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.svc.GetMovie(ctx, optionalActor(c), id)
	if err != nil {
		return err
	}
	return respond(c, m)
}

func (h *CatalogHandler) MyMovies(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.MyMovies(ctx, a)
	if err != nil {
		return err
	}
	return respond(c, list)
}

func (h *CatalogHandler) UpdateMovie(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.MoviePatch
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.svc.UpdateMovie(ctx, a, id, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Movie updated", m)
}

func (h *CatalogHandler) DeleteMovie(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.DeleteMovie(ctx, a, id); err != nil {
		return err
	}
	return done(c, "Movie deleted")
}

// approveReq defaults to approving when the body omits the flag.
type approveReq struct {
	Approved *bool `json:"approved"`
}

func (r approveReq) value() bool { return r.Approved == nil || *r.Approved }

func (h *CatalogHandler) ApproveMovie(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in approveReq
	if c.Request().ContentLength != 0 {
		if err := bind(c, &in); err != nil {
			return err
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.svc.ApproveMovie(ctx, id, in.value())
	if err != nil {
		return err
	}
	return withMessage(c, "Movie approval updated", m)
}
