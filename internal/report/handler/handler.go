package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/http/shared"
	"gatepass/internal/platform/middleware"
	"gatepass/internal/report/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

// Service defines the report operations the handler delegates to.
type Service interface {
	Aggregate(ctx context.Context, residenceID id.ResidenceID, kind models.ReportKind, from, to time.Time) (models.Report, error)
	Passes(ctx context.Context, offset, limit int) (models.PassPage, error)
	Statistics(ctx context.Context) (models.Statistics, error)
}

// Handler exposes the report routes. Reports are guard-facing; the security
// desk is their consumer.
type Handler struct {
	logger    *slog.Logger
	reports   Service
	validator middleware.JWTValidator
}

func New(reports Service, logger *slog.Logger, validator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, reports: reports, validator: validator}
}

// Register mounts the report routes.
func (h *Handler) Register(r chi.Router) {
	reportRouter := chi.NewRouter()
	reportRouter.Use(middleware.RequireGuard(h.validator, h.logger))
	reportRouter.Get("/aggregate", h.handleAggregate)
	reportRouter.Get("/passes", h.handlePasses)
	reportRouter.Get("/statistics", h.handleStatistics)
	r.Mount("/reports", reportRouter)
}

func (h *Handler) handleAggregate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	residenceID, err := id.ParseResidenceID(query.Get("residence_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	kind, err := models.ParseReportKind(query.Get("kind"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	from, err := parseTime(query.Get("from"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	to, err := parseTime(query.Get("to"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.reports.Aggregate(ctx, residenceID, kind, from, to)
	if err != nil {
		h.logger.WarnContext(ctx, "report aggregation failed",
			"residence_id", residenceID.String(),
			"kind", string(kind),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handlePasses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	offset, err := parseCount(query.Get("offset"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	limit, err := parseCount(query.Get("limit"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	page, err := h.reports.Passes(r.Context(), offset, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Statistics(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}

// parseCount accepts a non-negative integer or an empty string, which means
// "use the default".
func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "offset and limit must be non-negative integers")
	}
	return n, nil
}

// parseTime accepts RFC 3339 or an empty string, which means "use the default
// window edge".
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "timestamps must be RFC 3339")
	}
	return t, nil
}
