package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	resp "prizewheel/internal/api/response"
	"prizewheel/internal/location"
	"prizewheel/internal/logger/sl"
	"prizewheel/internal/persistence"
)

const defaultLookupTimeout = 3 * time.Second

// Messages the location dialog shows as is.
const (
	msgStatesUnavailable = "Não foi possível carregar os estados. Tente novamente."
	msgCitiesUnavailable = "Não foi possível carregar as cidades. Tente novamente."
	msgUnknownChoice     = "Selecione um estado e uma cidade válidos."
)

type LocationHandler struct {
	svc       *location.Service
	jar       *persistence.Jar
	timeout   time.Duration
	log       *slog.Logger
	validator *validator.Validate
}

func NewLocationHandler(svc *location.Service, jar *persistence.Jar, timeout time.Duration, log *slog.Logger) *LocationHandler {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if log == nil {
		log = sl.Discard()
	}
	return &LocationHandler{
		svc:       svc,
		jar:       jar,
		timeout:   timeout,
		log:       log,
		validator: validator.New(),
	}
}

func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/location", h.current)
	r.Post("/location/confirm", h.confirm)
	r.Get("/location/states", h.states)
	r.Get("/location/states/{id}/cities", h.cities)
	r.Post("/location/manual", h.manual)
}

type LocationResponse struct {
	resp.Response
	location.Location
	Confirmed bool            `json:"confirmed"`
	Suggested *location.State `json:"suggestedState,omitempty"`
}

type StatesResponse struct {
	resp.Response
	States []location.State `json:"states"`
}

type CitiesResponse struct {
	resp.Response
	Cities []location.City `json:"cities"`
}

type ConfirmRequest struct {
	City   string `json:"city" validate:"required,max=120"`
	Region string `json:"region" validate:"required,max=120"`
}

type ManualRequest struct {
	StateID int    `json:"stateId" validate:"required,gt=0"`
	City    string `json:"city" validate:"required,max=120"`
}

func (h *LocationHandler) requestLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *LocationHandler) lookupContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// current returns the stored location, or detects one from the client IP
// along with the state it most likely belongs to.
func (h *LocationHandler) current(w http.ResponseWriter, r *http.Request) {
	if city, region, ok := h.jar.Location(r); ok {
		resp.JSON(w, r, http.StatusOK, LocationResponse{
			Response:  resp.OK(),
			Location:  location.Location{City: city, Region: region},
			Confirmed: true,
		})
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	loc := h.svc.Detect(ctx, r.RemoteAddr)
	out := LocationResponse{Response: resp.OK(), Location: loc}
	if !loc.IsDefault() {
		if st, ok := h.svc.Suggest(ctx, loc.Region); ok {
			out.Suggested = &st
		}
	}
	resp.JSON(w, r, http.StatusOK, out)
}

func (h *LocationHandler) confirm(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.confirm"

	var req ConfirmRequest
	if !decode(w, r, h.validator, h.requestLog(r, op), &req) {
		return
	}
	h.jar.SetLocation(w, req.City, req.Region)
	resp.JSON(w, r, http.StatusOK, LocationResponse{
		Response:  resp.OK(),
		Location:  location.Location{City: req.City, Region: req.Region},
		Confirmed: true,
	})
}

func (h *LocationHandler) states(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.states"

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	states, err := h.svc.States(ctx)
	if err != nil {
		h.log.Error("failed to load states", slog.String("op", op), sl.Err(err))
		resp.Fail(w, r, msgStatesUnavailable, http.StatusBadGateway)
		return
	}
	resp.JSON(w, r, http.StatusOK, StatesResponse{Response: resp.OK(), States: states})
}

func (h *LocationHandler) cities(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.cities"

	stateID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || stateID <= 0 {
		resp.Fail(w, r, "invalid state id", http.StatusBadRequest)
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	cities, err := h.svc.Cities(ctx, stateID)
	if err != nil {
		h.log.Error("failed to load cities",
			slog.String("op", op),
			slog.Int("state_id", stateID),
			sl.Err(err))
		resp.Fail(w, r, msgCitiesUnavailable, http.StatusBadGateway)
		return
	}
	resp.JSON(w, r, http.StatusOK, CitiesResponse{Response: resp.OK(), Cities: cities})
}

func (h *LocationHandler) manual(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.location.manual"

	var req ManualRequest
	if !decode(w, r, h.validator, h.requestLog(r, op), &req) {
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	loc, err := h.svc.Choose(ctx, req.StateID, req.City)
	switch {
	case errors.Is(err, location.ErrUnknownState), errors.Is(err, location.ErrUnknownCity):
		resp.Fail(w, r, msgUnknownChoice, http.StatusUnprocessableEntity)
		return
	case err != nil:
		h.log.Error("failed to validate location", slog.String("op", op), sl.Err(err))
		resp.Fail(w, r, msgCitiesUnavailable, http.StatusBadGateway)
		return
	}

	h.jar.SetLocation(w, loc.City, loc.Region)
	resp.JSON(w, r, http.StatusOK, LocationResponse{
		Response:  resp.OK(),
		Location:  loc,
		Confirmed: true,
	})
}
