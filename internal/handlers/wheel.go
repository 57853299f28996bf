package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	resp "prizewheel/internal/api/response"
	"prizewheel/internal/logger/sl"
	"prizewheel/internal/persistence"
	"prizewheel/internal/viewmodel"
	"prizewheel/internal/wheel"
	"prizewheel/views/components"
)

const keepAliveEvery = 25 * time.Second

// Spin button labels.
const (
	labelSpin      = "GIRAR AGORA!"
	labelSpinning  = "Girando..."
	labelSpinAgain = "GIRAR NOVAMENTE!"
)

type WheelHandler struct {
	store     *wheel.Store
	jar       *persistence.Jar
	log       *slog.Logger
	validator *validator.Validate
}

func NewWheelHandler(store *wheel.Store, jar *persistence.Jar, log *slog.Logger) *WheelHandler {
	if log == nil {
		log = sl.Discard()
	}
	return &WheelHandler{
		store:     store,
		jar:       jar,
		log:       log,
		validator: validator.New(),
	}
}

// RegisterRoutes mounts the request/response endpoints. The SSE stream is
// registered separately so it can live outside the request timeout.
func (h *WheelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wheel", h.snapshot)
	r.Post("/wheel/spin", h.spin)
	r.Post("/wheel/reset", h.reset)
	r.Post("/wheel/resize", h.resize)
	r.Post("/wheel/collect", h.collect)
	r.Get("/wheel/fragment", h.fragment)
}

func (h *WheelHandler) RegisterStream(r chi.Router) {
	r.Get("/wheel/stream", h.stream)
}

type SnapshotResponse struct {
	resp.Response
	Wheel  wheel.Snapshot `json:"wheel"`
	Played bool           `json:"played"`
}

type SpinResponse struct {
	resp.Response
	Pending    wheel.Pending `json:"pending"`
	DurationMs int64         `json:"durationMs"`
}

type ResizeRequest struct {
	Width int `json:"width" validate:"required,gt=0,lte=10000"`
}

type CollectResponse struct {
	resp.Response
	Prize    wheel.Prize `json:"prize"`
	Fallback bool        `json:"fallback"`
	Message  string      `json:"message"`
}

func (h *WheelHandler) requestLog(r *http.Request, op, visitorID string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("visitor", visitorID),
	)
}

func (h *WheelHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	widget := h.store.GetOrCreate(id)
	resp.JSON(w, r, http.StatusOK, SnapshotResponse{
		Response: resp.OK(),
		Wheel:    widget.Snapshot(),
		Played:   played(r, h.jar, h.store, h.log, id),
	})
}

func (h *WheelHandler) spin(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wheel.spin"

	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	log := h.requestLog(r, op, id)

	if played(r, h.jar, h.store, h.log, id) {
		log.Info("spin refused, visitor already played")
		resp.Fail(w, r, "already played", http.StatusForbidden)
		return
	}

	pending, err := h.store.Spin(id)
	switch {
	case errors.Is(err, wheel.ErrSpinInProgress):
		resp.Fail(w, r, "spin in progress", http.StatusConflict)
		return
	case errors.Is(err, wheel.ErrNotInteractive):
		log.Error("spin on non-interactive wheel", sl.Err(err))
		resp.Fail(w, r, "wheel unavailable", http.StatusServiceUnavailable)
		return
	case err != nil:
		log.Error("failed to spin", sl.Err(err))
		resp.Fail(w, r, "failed to spin", http.StatusInternalServerError)
		return
	}

	resp.JSON(w, r, http.StatusAccepted, SpinResponse{
		Response:   resp.Response{Status: http.StatusAccepted},
		Pending:    pending,
		DurationMs: pending.Duration.Milliseconds(),
	})
}

func (h *WheelHandler) reset(w http.ResponseWriter, r *http.Request) {
	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	h.store.Reset(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WheelHandler) resize(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wheel.resize"

	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	log := h.requestLog(r, op, id)

	var req ResizeRequest
	if !decode(w, r, h.validator, log, &req) {
		return
	}

	if !h.store.Resize(id, req.Width) {
		resp.Fail(w, r, "wheel unavailable", http.StatusServiceUnavailable)
		return
	}
	resp.JSON(w, r, http.StatusAccepted, resp.Response{Status: http.StatusAccepted})
}

func (h *WheelHandler) collect(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wheel.collect"

	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	log := h.requestLog(r, op, id)

	widget, ok := h.store.Get(id)
	if !ok {
		resp.Fail(w, r, "no result to collect", http.StatusNotFound)
		return
	}
	if widget.State().Phase == wheel.PhaseSpinning {
		resp.Fail(w, r, "spin in progress", http.StatusConflict)
		return
	}
	res, ok := widget.LastResult()
	if !ok {
		resp.Fail(w, r, "no result to collect", http.StatusNotFound)
		return
	}

	h.jar.RecordWin(w, res.Prize.Name, time.Now())
	log.Info("prize collected", slog.String("prize", res.Prize.Name))

	resp.JSON(w, r, http.StatusOK, CollectResponse{
		Response: resp.OK(),
		Prize:    res.Prize,
		Fallback: wheel.IsFallback(res.Prize),
		Message:  "Você ganhou " + res.Prize.Name + "!",
	})
}

func (h *WheelHandler) fragment(w http.ResponseWriter, r *http.Request) {
	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	widget := h.store.GetOrCreate(id)
	render(w, r, components.Wheel(wheelFragment(widget.Snapshot(), played(r, h.jar, h.store, h.log, id))))
}

func (h *WheelHandler) stream(w http.ResponseWriter, r *http.Request) {
	id, ok := visitorID(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	// The server write timeout would otherwise cut the stream.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	widget := h.store.GetOrCreate(id)
	hub := h.store.Broadcaster(id)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendWheel := func() {
		frag := wheelFragment(widget.Snapshot(), played(r, h.jar, h.store, h.log, id))
		writeSSE(w, wheel.EventWheel, renderToString(r, components.Wheel(frag)))
		flusher.Flush()
	}
	sendResult := func(prize string) {
		writeSSE(w, wheel.EventResult, renderToString(r, components.Result(viewmodel.ResultFragment{
			Prize:    prize,
			Fallback: prize == wheel.FallbackPrize.Name,
		})))
		flusher.Flush()
	}

	sendWheel()

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-sub:
			if !open {
				// widget evicted; the browser reconnects and gets a fresh one
				return
			}
			switch event.Name {
			case wheel.EventWheel:
				sendWheel()
			case wheel.EventResult:
				sendResult(event.Data)
				sendWheel()
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

// played is true when the win cookie is present or the ledger has a win for
// the visitor. Ledger errors count as not played.
func played(r *http.Request, jar *persistence.Jar, store *wheel.Store, log *slog.Logger, visitorID string) bool {
	if jar.HasAlreadyPlayed(r) {
		return true
	}
	ok, err := store.HasPlayed(r.Context(), visitorID)
	if err != nil {
		log.Warn("failed to check ledger", slog.String("visitor", visitorID), sl.Err(err))
		return false
	}
	return ok
}

// lastPrize prefers the cookie and falls back to the ledger.
func lastPrize(r *http.Request, jar *persistence.Jar, store *wheel.Store, visitorID string) string {
	if prize, _, ok := jar.LastPrize(r); ok {
		return prize
	}
	win, err := store.LastWin(r.Context(), visitorID)
	if err != nil {
		return ""
	}
	return win.Prize
}

func wheelFragment(snap wheel.Snapshot, played bool) viewmodel.WheelFragment {
	spinning := snap.State.Phase == wheel.PhaseSpinning
	label := labelSpin
	switch {
	case spinning:
		label = labelSpinning
	case played || snap.LastResult != nil:
		label = labelSpinAgain
	}

	segments := make([]viewmodel.SegmentLabel, 0, len(snap.Layout.Segments))
	for _, seg := range snap.Layout.Segments {
		segments = append(segments, viewmodel.SegmentLabel{
			Index:    seg.Index,
			Text:     strings.TrimSpace(seg.Icon + " " + seg.Name),
			Color:    seg.Color,
			X:        50 + seg.X*50,
			Y:        50 + seg.Y*50,
			Rotation: seg.Rotation,
		})
	}

	s := snap.Surfaces
	return viewmodel.WheelFragment{
		ID:          snap.ID,
		Interactive: snap.Interactive,
		Missing:     snap.Missing,
		Gradient:    snap.Layout.Gradient,
		FontSize:    snap.Layout.FontSize,
		Rotation:    snap.State.CumulativeAngle,
		Spinning:    spinning,
		Played:      played,
		SpinLabel:   label,
		Segments:    segments,
		Surfaces: viewmodel.Surfaces{
			Modal:         s.Modal,
			Wheel:         s.Wheel,
			SpinButton:    s.SpinButton,
			PrizeModal:    s.PrizeModal,
			CollectButton: s.CollectButton,
			CloseButton:   s.CloseButton,
			Toast:         s.Toast,
			Confetti:      s.Confetti,
		},
	}
}
