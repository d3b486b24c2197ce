package httpadapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kanishkautag/GeoStormX/internal/domain"
	"github.com/kanishkautag/GeoStormX/internal/forecast"
)

// maxRequestBody bounds POST bodies.
const maxRequestBody = 64 << 10

var errNoSnapshot = errors.New("no forecast loaded yet")

type handlers struct {
	deps   Deps
	logger *slog.Logger
}

type forecastResponse struct {
	ID        uuid.UUID              `json:"id"`
	FetchedAt time.Time              `json:"fetched_at"`
	Shape     domain.PayloadShape    `json:"shape"`
	Dropped   int                    `json:"dropped"`
	CurrentKp *float64               `json:"current_kp"`
	Summary   domain.ForecastSummary `json:"summary"`
	Timeline  domain.Timeline        `json:"timeline"`
}

func (h *handlers) getForecast(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.deps.Snapshots.Latest()
	if !ok {
		writeError(w, errNoSnapshot.Error(), http.StatusServiceUnavailable)
		return
	}
	resp := forecastResponse{
		ID:        snap.ID,
		FetchedAt: snap.FetchedAt,
		Shape:     snap.Shape,
		Dropped:   snap.Dropped,
		Summary:   snap.Summary,
		Timeline:  snap.Timeline,
	}
	if kp, ok := snap.CurrentKp(); ok {
		resp.CurrentKp = &kp
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getFrame(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, "index must be an integer", http.StatusBadRequest)
		return
	}
	snap, ok := h.deps.Snapshots.Latest()
	if !ok {
		writeError(w, errNoSnapshot.Error(), http.StatusServiceUnavailable)
		return
	}
	frame, ok := snap.Timeline.Frame(index, h.deps.Countries)
	if !ok {
		writeError(w, fmt.Sprintf("index %d outside timeline of %d points", index, len(snap.Timeline)), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

type ovalResponse struct {
	domain.Oval
	Renderable bool             `json:"renderable"`
	Severity   domain.Severity  `json:"severity,omitempty"`
	Regions    domain.RegionSet `json:"regions"`
}

// getOval draws the night-side oval for ?lat= (geomagnetic latitude) or
// ?kp= at ?time= (default now).
func (h *handlers) getOval(w http.ResponseWriter, r *http.Request) {
	at, ok := h.targetTime(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var (
		lat      float64
		severity domain.Severity
		err      error
	)
	switch {
	case q.Get("lat") != "":
		lat, err = strconv.ParseFloat(q.Get("lat"), 64)
		if err != nil || lat < -90 || lat > 90 {
			writeError(w, "lat must be a number in [-90, 90]", http.StatusBadRequest)
			return
		}
	case q.Get("kp") != "":
		kp, err := parseKp(q.Get("kp"))
		if err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		lat = domain.DefaultLatitude(kp)
		severity = domain.SeverityFor(kp)
	default:
		writeError(w, "one of lat or kp is required", http.StatusBadRequest)
		return
	}

	oval := domain.NightSideOval(lat, at)
	writeJSON(w, http.StatusOK, ovalResponse{
		Oval:       oval,
		Renderable: oval.Renderable(),
		Severity:   severity,
		Regions:    h.deps.Countries.Affected(oval.Points),
	})
}

type terminatorResponse struct {
	Time   time.Time       `json:"time"`
	Points []domain.LatLng `json:"points"`
}

func (h *handlers) getTerminator(w http.ResponseWriter, r *http.Request) {
	at, ok := h.targetTime(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, terminatorResponse{Time: at, Points: domain.SolarTerminator(at)})
}

type aviationResponse struct {
	FetchedAt time.Time              `json:"fetched_at"`
	Impact    bool                   `json:"impact"`
	Summary   string                 `json:"summary"`
	Blocks    []domain.AviationBlock `json:"blocks"`
}

func (h *handlers) getAviation(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.deps.Snapshots.Latest()
	if !ok {
		writeError(w, errNoSnapshot.Error(), http.StatusServiceUnavailable)
		return
	}
	resp := aviationResponse{
		FetchedAt: snap.FetchedAt,
		Impact:    len(snap.Aviation) > 0,
		Blocks:    snap.Aviation,
	}
	if resp.Blocks == nil {
		resp.Blocks = []domain.AviationBlock{}
	}
	if resp.Impact {
		resp.Summary = fmt.Sprintf("%d three-hour blocks with auroral exposure on night-side routes", len(resp.Blocks))
	} else {
		resp.Summary = "No significant impact expected in the next 24 hours"
	}
	writeJSON(w, http.StatusOK, resp)
}

type quoteRequest struct {
	AssetClass      string          `json:"asset_class"`
	ReplacementCost decimal.Decimal `json:"replacement_cost"`
	Kp              *float64        `json:"kp"`
}

type quoteResponse struct {
	Asset      domain.InsurableAsset `json:"asset"`
	Kp         float64               `json:"kp"`
	RiskFactor float64               `json:"risk_factor"`
	Quote      domain.PremiumQuote   `json:"quote"`
}

func (h *handlers) postQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	class, err := domain.ParseAssetClass(req.AssetClass)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	asset, err := domain.NewInsurableAsset(class, req.ReplacementCost)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	var kp float64
	if req.Kp != nil {
		kp = *req.Kp
		if kp < 0 || kp > 9 {
			writeError(w, "kp must be in [0, 9]", http.StatusUnprocessableEntity)
			return
		}
	} else {
		snap, ok := h.deps.Snapshots.Latest()
		if !ok {
			writeError(w, errNoSnapshot.Error(), http.StatusServiceUnavailable)
			return
		}
		if kp, ok = snap.CurrentKp(); !ok {
			writeError(w, "forecast has no entries", http.StatusServiceUnavailable)
			return
		}
	}

	quote, err := h.deps.Pricer.Price(r.Context(), asset, kp)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("price asset", "error", err, "asset_class", class)
		}
		writeError(w, err.Error(), status)
		return
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.QuotesServed.WithLabelValues(class.String()).Inc()
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		Asset:      asset,
		Kp:         kp,
		RiskFactor: domain.RiskFactor(kp, class),
		Quote:      quote,
	})
}

func (h *handlers) getPlayback(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Playback.State())
}

type seekRequest struct {
	Index *int `json:"index"`
}

func (h *handlers) postPlayback(w http.ResponseWriter, r *http.Request) {
	var (
		st  forecast.PlaybackState
		err error
	)
	switch chi.URLParam(r, "action") {
	case "play":
		st = h.deps.Playback.Play()
	case "pause":
		st = h.deps.Playback.Pause()
	case "speed":
		st = h.deps.Playback.ToggleSpeed()
	case "reset":
		st, err = h.deps.Playback.Reset()
	case "seek":
		var req seekRequest
		if derr := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); derr != nil || req.Index == nil {
			writeError(w, `body must be {"index": n}`, http.StatusBadRequest)
			return
		}
		st, err = h.deps.Playback.Seek(*req.Index)
	default:
		writeError(w, "unknown playback action", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// targetTime reads ?time=, defaulting to the server clock. It writes a 400
// and returns false when the value does not parse.
func (h *handlers) targetTime(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("time")
	if raw == "" {
		return h.deps.Clock.Now().UTC(), true
	}
	t, err := domain.ParseTargetTime(raw)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return time.Time{}, false
	}
	return t, true
}

func parseKp(s string) (float64, error) {
	kp, err := strconv.ParseFloat(s, 64)
	if err != nil || kp < 0 || kp > 9 {
		return 0, errors.New("kp must be a number in [0, 9]")
	}
	return kp, nil
}

// statusFor maps domain and playback errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownAssetClass),
		errors.Is(err, domain.ErrInvalidTargetTime):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNonPositiveCost),
		errors.Is(err, domain.ErrInvalidRiskFactor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, forecast.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, forecast.ErrNoTimeline):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
