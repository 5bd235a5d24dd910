package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/http/shared"
	passmodels "gatepass/internal/pass/models"
	"gatepass/internal/platform/middleware"
	"gatepass/internal/scan/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

const defaultHistoryLimit = 50

// Service defines the scan operations the handler delegates to.
type Service interface {
	Scan(ctx context.Context, passID id.PassID) (passmodels.ValidationResult, error)
	Confirm(ctx context.Context, guardID id.GuardID, passID id.PassID, decision id.Decision) (models.ConfirmResult, error)
	History(ctx context.Context, guardID id.GuardID, limit int) ([]models.ScanDecision, error)
	Stats(ctx context.Context, guardID id.GuardID) (models.GuardStats, error)
}

// Handler exposes the guard-facing scan routes.
type Handler struct {
	logger    *slog.Logger
	scans     Service
	validator middleware.JWTValidator
}

func New(scans Service, logger *slog.Logger, validator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, scans: scans, validator: validator}
}

// Register mounts the guard-facing scan routes.
func (h *Handler) Register(r chi.Router) {
	scanRouter := chi.NewRouter()
	scanRouter.Use(middleware.RequireGuard(h.validator, h.logger))
	scanRouter.Post("/scan", h.handleScan)
	scanRouter.Post("/confirm", h.handleConfirm)
	scanRouter.Get("/history", h.handleHistory)
	scanRouter.Get("/stats", h.handleStats)
	r.Mount("/guard-scans", scanRouter)
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	passID, err := id.ParsePassID(req.PassID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.scans.Scan(ctx, passID)
	if err != nil {
		h.logger.ErrorContext(ctx, "scan preview failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toValidationResponse(passID, result))
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	passID, err := id.ParsePassID(req.PassID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	decision := id.DecisionDenied
	if req.Allowed {
		decision = id.DecisionApproved
	}

	result, err := h.scans.Confirm(ctx, requestcontext.GuardID(ctx), passID, decision)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm rejected",
			"pass_id", passID.String(),
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}

	standing, _ := result.Scan.Decision()
	shared.WriteJSON(w, http.StatusOK, models.ConfirmResponse{
		ScanID:         result.Scan.ID.String(),
		PassID:         result.Scan.PassID.String(),
		GuardID:        result.Scan.GuardID.String(),
		Decision:       standing.String(),
		ScannedAt:      result.Scan.ScannedAt,
		AlreadyDecided: result.Outcome == models.OutcomeAlreadyDecided,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	scans, err := h.scans.History(ctx, requestcontext.GuardID(ctx), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]models.HistoryEntry, 0, len(scans))
	for _, scan := range scans {
		decision, _ := scan.Decision()
		out = append(out, models.HistoryEntry{
			ScanID:    scan.ID.String(),
			PassID:    scan.PassID.String(),
			Decision:  decision.String(),
			ScannedAt: scan.ScannedAt,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.scans.Stats(ctx, requestcontext.GuardID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.StatsResponse{
		GuardID:       stats.GuardID.String(),
		TotalScans:    stats.TotalScans,
		TotalApproved: stats.TotalApproved,
		TotalDenied:   stats.TotalDenied,
	})
}

func toValidationResponse(passID id.PassID, result passmodels.ValidationResult) passmodels.ValidationResponse {
	if !result.Valid {
		msg := "Invalid or unknown pass"
		if result.Reason == passmodels.ReasonExpired {
			msg = "QR Code expired"
		}
		return passmodels.ValidationResponse{Valid: false, Message: msg}
	}
	return passmodels.ValidationResponse{
		Valid:   true,
		Message: "Valid pass",
		Data: &passmodels.ValidationData{
			Visitor:   *result.Visitor,
			Resident:  *result.Resident,
			CreatedAt: result.CreatedAt,
			ExpiresAt: result.ExpiresAt,
			PassID:    passID.String(),
		},
	}
}
