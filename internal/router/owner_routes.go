package router

import (
	"github.com/labstack/echo/v4"

	"github.com/shyam-539/GoTicket-server/internal/middleware"
	"github.com/shyam-539/GoTicket-server/internal/model"
)

// registerPublic mounts the anonymous browse routes.  Catalogue reads go
// through the response cache; seat availability never does.
func registerPublic(api *echo.Group, h Handlers, m chain) {
	api.GET("/movies", h.Catalog.ListMovies, m.cache)
	api.GET("/movies/:id", h.Catalog.GetMovie, m.optional, m.cache)
	api.GET("/screens/:id/seats", h.Catalog.ScreenSeats)

	api.GET("/shows", h.Shows.Search, m.cache)
	api.GET("/shows/:id", h.Shows.Get, m.cache)
	api.GET("/shows/:id/seats", h.Shows.Seats)
	api.GET("/theaters/:id/shows", h.Shows.ListByTheater, m.cache)
}

// registerOwner mounts the management routes shared by theater owners and
// admins.  Ownership of the individual theater is checked by the services.
func registerOwner(api *echo.Group, h Handlers, m chain) {
	g := api.Group("", m.auth, middleware.RequireRole(model.RoleTheaterOwner, model.RoleAdmin))

	// ---- Theaters ----
	g.POST("/theaters", h.Catalog.CreateTheater)
	g.GET("/theaters", h.Catalog.ListTheaters)
	g.GET("/theaters/:id", h.Catalog.GetTheater)
	g.PATCH("/theaters/:id", h.Catalog.UpdateTheater)
	g.DELETE("/theaters/:id", h.Catalog.DeleteTheater)

	// ---- Screens ----
	g.POST("/screens", h.Catalog.CreateScreen)
	g.GET("/theaters/:id/screens", h.Catalog.ListScreens)
	g.PATCH("/screens/:id", h.Catalog.UpdateScreen)
	g.DELETE("/screens/:id", h.Catalog.DeleteScreen)

	// ---- Seats ----
	g.POST("/seats", h.Catalog.CreateSeats)
	g.POST("/seats/bulk-update", h.Catalog.BulkUpdateSeats)
	g.PATCH("/seats/:id", h.Catalog.UpdateSeat)
	g.DELETE("/seats/:id", h.Catalog.DeleteSeat)

	// ---- Movies ----
	g.GET("/movies/mine", h.Catalog.MyMovies)
	g.POST("/movies", h.Catalog.CreateMovie)
	g.PATCH("/movies/:id", h.Catalog.UpdateMovie)
	g.DELETE("/movies/:id", h.Catalog.DeleteMovie)

	// ---- Shows ----
	g.POST("/shows", h.Shows.Create)
	g.PATCH("/shows/:id", h.Shows.Update)
	g.DELETE("/shows/:id", h.Shows.Delete)
	g.PATCH("/shows/:id/seats/:seatId", h.Shows.SetSeatStatus)

	// ---- Bookings on the caller's theaters ----
	g.GET("/owner/bookings", h.Bookings.ListForOwner)
}
