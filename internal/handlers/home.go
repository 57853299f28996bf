package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	resp "prizewheel/internal/api/response"
	"prizewheel/internal/location"
	"prizewheel/internal/logger/sl"
	"prizewheel/internal/persistence"
	"prizewheel/internal/viewmodel"
	"prizewheel/internal/wheel"
	"prizewheel/views/pages"
)

const pageTitle = "Roleta de Prêmios"

type HomeHandler struct {
	store *wheel.Store
	jar   *persistence.Jar
	log   *slog.Logger
}

func NewHomeHandler(store *wheel.Store, jar *persistence.Jar, log *slog.Logger) *HomeHandler {
	if log == nil {
		log = sl.Discard()
	}
	return &HomeHandler{store: store, jar: jar, log: log}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/healthz", h.healthz)
}

type HealthResponse struct {
	resp.Response
	Widgets int `json:"widgets"`
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	widget := h.store.GetOrCreate(id)
	hasPlayed := played(r, h.jar, h.store, h.log, id)

	// The IP lookup happens from the page script so a slow upstream never
	// delays the first paint.
	banner := viewmodel.LocationBanner{City: location.DefaultCity, Region: location.DefaultRegion}
	if city, region, ok := h.jar.Location(r); ok {
		banner = viewmodel.LocationBanner{City: city, Region: region, Confirmed: true}
	}

	data := viewmodel.WheelPage{
		Title:    pageTitle,
		Wheel:    wheelFragment(widget.Snapshot(), hasPlayed),
		Location: banner,
		Played:   hasPlayed,
	}
	if hasPlayed {
		data.LastPrize = lastPrize(r, h.jar, h.store, id)
	}
	render(w, r, pages.WheelPage(data))
}

func (h *HomeHandler) healthz(w http.ResponseWriter, r *http.Request) {
	resp.JSON(w, r, http.StatusOK, HealthResponse{
		Response: resp.OK(),
		Widgets:  h.store.Len(),
	})
}
