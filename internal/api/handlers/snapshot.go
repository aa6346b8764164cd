package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gorilla/mux"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/internal/pipeline"
	"github.com/zhenliu/marketbrief/internal/report"
	"github.com/zhenliu/marketbrief/internal/storage"
	"github.com/zhenliu/marketbrief/pkg/logger"
	"github.com/zhenliu/marketbrief/pkg/redis"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const latestCacheTTL = 5 * time.Minute

// SnapshotHandler serves stored snapshots and accepts collection triggers.
type SnapshotHandler struct {
	store  contracts.Store
	cache  *redis.Cache
	runner *pipeline.Runner
	loc    *time.Location
	logger *logger.Logger
}

// NewSnapshotHandler creates the handler. The cache may be inert when
// Redis is not configured.
func NewSnapshotHandler(
	store contracts.Store,
	cache *redis.Cache,
	runner *pipeline.Runner,
	loc *time.Location,
	log *logger.Logger,
) *SnapshotHandler {
	return &SnapshotHandler{
		store:  store,
		cache:  cache,
		runner: runner,
		loc:    loc,
		logger: log,
	}
}

// ListDates returns every stored snapshot date.
// GET /api/snapshots
func (h *SnapshotHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.store.ListDates(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshot dates")
		respondError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(dates),
		"dates": dates,
	})
}

// GetByDate returns the snapshot for one date.
// GET /api/snapshot/{date}
func (h *SnapshotHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadByDate(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// GetLatest returns the most recent snapshot, cached briefly.
// GET /api/snapshot/latest
func (h *SnapshotHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached contracts.MarketSnapshot
	if hit, err := h.cache.Get(ctx, "latest", &cached); err != nil {
		h.logger.WithError(err).Warn("Latest snapshot cache read failed")
	} else if hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	dates, err := h.store.ListDates(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshot dates")
		respondError(w, http.StatusInternalServerError, "Failed to find latest snapshot")
		return
	}
	if len(dates) == 0 {
		respondError(w, http.StatusNotFound, "No snapshots stored yet")
		return
	}

	snap, err := h.store.Load(ctx, dates[len(dates)-1])
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load latest snapshot")
		return
	}

	if err := h.cache.Set(ctx, "latest", snap, latestCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Latest snapshot cache write failed")
	}
	respondJSON(w, http.StatusOK, snap)
}

// GetQuality returns the quality verdict for one date.
// GET /api/quality/{date}
func (h *SnapshotHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadByDate(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":        snap.Date,
		"score":       snap.QualityScore,
		"meets_bar":   snap.MeetsQualityBar(),
		"quality_bar": contracts.QualityBar,
		"defects":     snap.QualityDefects,
	})
}

// GetReport renders the markdown brief for one date.
// GET /api/report/{date}
func (h *SnapshotHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadByDate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.Markdown(snap)))
}

// CollectRequest optionally pins the run date of a triggered collection.
type CollectRequest struct {
	Date string `json:"date"`
}

// Collect triggers one pipeline run and returns the persisted snapshot
// summary. Without a date the current market date is used.
// POST /api/collect
func (h *SnapshotHandler) Collect(w http.ResponseWriter, r *http.Request) {
	var req CollectRequest
	if r.Body != nil {
		// An empty body means "run for today".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var runDate time.Time
	var err error
	if req.Date != "" {
		if !dateRe.MatchString(req.Date) {
			respondError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
			return
		}
		runDate, err = time.ParseInLocation("2006-01-02", req.Date, h.loc)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date")
			return
		}
	} else {
		runDate, err = h.runner.ResolveRunDate(time.Now().In(h.loc))
		if err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
	}

	snap, err := h.runner.Run(r.Context(), runDate)
	if err != nil {
		var orchErr *contracts.OrchestratorError
		if errors.As(err, &orchErr) {
			respondError(w, http.StatusUnprocessableEntity, orchErr.Error())
			return
		}
		h.logger.WithError(err).Error("Triggered collection failed")
		respondError(w, http.StatusInternalServerError, "Collection failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":      snap.Date,
		"score":     snap.QualityScore,
		"meets_bar": snap.MeetsQualityBar(),
		"defects":   len(snap.QualityDefects),
	})
}

func (h *SnapshotHandler) loadByDate(w http.ResponseWriter, r *http.Request) (contracts.MarketSnapshot, bool) {
	date := mux.Vars(r)["date"]
	if !dateRe.MatchString(date) {
		respondError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
		return contracts.MarketSnapshot{}, false
	}

	snap, err := h.store.Load(r.Context(), date)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No snapshot for "+date)
		return contracts.MarketSnapshot{}, false
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return contracts.MarketSnapshot{}, false
	}
	return snap, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
