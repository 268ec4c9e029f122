package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/repository"
	"github.com/shyam-539/GoTicket-server/internal/service"
)

type ShowHandler struct {
	svc *service.ShowService
}

func NewShowHandler(svc *service.ShowService) *ShowHandler {
	return &ShowHandler{svc: svc}
}

func (h *ShowHandler) Create(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var in service.ShowInput
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sh, err := h.svc.Create(ctx, a, in)
	if err != nil {
		return err
	}
	return created(c, "Show scheduled", sh)
}

func (h *ShowHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sh, err := h.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, sh)
}

// ListByTheater lists a theater's upcoming shows.
func (h *ShowHandler) ListByTheater(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.svc.ListByTheater(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, list)
}

// Seats is the availability map of a show.  It is never cached.
func (h *ShowHandler) Seats(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.svc.Seats(ctx, id)
	if err != nil {
		return err
	}
	return respond(c, seats)
}

type searchResp struct {
	Items    []repository.PublicShowRow `json:"items"`
	Total    int64                      `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"pageSize"`
}

// Search finds upcoming shows by movie title, theater, city and language.
// time is "upcoming" (default), "active" or "any".
func (h *ShowHandler) Search(c echo.Context) error {
	q := repository.ShowSearchQuery{
		Title:      strings.TrimSpace(c.QueryParam("title")),
		Theater:    strings.TrimSpace(c.QueryParam("theater")),
		City:       strings.TrimSpace(c.QueryParam("city")),
		Language:   strings.TrimSpace(c.QueryParam("language")),
		TimeFilter: strings.ToLower(strings.TrimSpace(c.QueryParam("time"))),
		Page:       intQuery(c, "page", 1),
		PageSize:   intQuery(c, "pageSize", 20),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, total, err := h.svc.Search(ctx, q)
	if err != nil {
		return err
	}
	if items == nil {
		items = []repository.PublicShowRow{}
	}
	return respond(c, searchResp{Items: items, Total: total, Page: q.Page, PageSize: min(q.PageSize, 100)})
}

func (h *ShowHandler) Update(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.ShowPatch
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	sh, err := h.svc.Update(ctx, a, id, in)
	if err != nil {
		return err
	}
	return withMessage(c, "Show updated", sh)
}

func (h *ShowHandler) Delete(c echo.Context) error {
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

	if err := h.svc.Delete(ctx, a, id); err != nil {
		return err
	}
	return done(c, "Show deleted")
}

type seatStatusReq struct {
	Status string `json:"status" validate:"required,oneof=available reserved maintenance"`
}

func (h *ShowHandler) SetSeatStatus(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	showID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	seatID, err := idParam(c, "seatId")
	if err != nil {
		return err
	}
	var in seatStatusReq
	if err := bind(c, &in); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.svc.SetSeatStatus(ctx, a, showID, seatID, in.Status); err != nil {
		return err
	}
	return done(c, "Seat status updated")
}
