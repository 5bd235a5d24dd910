package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/http/shared"
	"gatepass/internal/pass/models"
	"gatepass/internal/platform/middleware"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/requestcontext"
)

// Service defines the pass operations the handler delegates to.
type Service interface {
	Issue(ctx context.Context, residentID id.ResidentID, req models.CreatePassRequest) (models.VisitorPass, error)
	Renew(ctx context.Context, residentID id.ResidentID, passID id.PassID, durationMinutes int) (models.VisitorPass, error)
	Update(ctx context.Context, residentID id.ResidentID, passID id.PassID, req models.UpdatePassRequest) (models.VisitorPass, error)
	Delete(ctx context.Context, residentID id.ResidentID, passID id.PassID) error
	Get(ctx context.Context, residentID id.ResidentID, passID id.PassID) (models.VisitorPass, error)
	ListByResident(ctx context.Context, residentID id.ResidentID) ([]models.VisitorPass, error)
	EncodeQR(pass models.VisitorPass) (string, error)
}

// Handler is the thin HTTP layer over the pass service. It parses, delegates,
// and translates; business rules stay in the service.
type Handler struct {
	logger    *slog.Logger
	passes    Service
	validator middleware.JWTValidator
}

func New(passes Service, logger *slog.Logger, validator middleware.JWTValidator) *Handler {
	return &Handler{logger: logger, passes: passes, validator: validator}
}

// Register mounts the resident-facing pass routes.
func (h *Handler) Register(r chi.Router) {
	passRouter := chi.NewRouter()
	passRouter.Use(middleware.RequireResident(h.validator, h.logger))
	passRouter.Post("/", h.handleIssue)
	passRouter.Get("/", h.handleList)
	passRouter.Get("/{passID}", h.handleGet)
	passRouter.Put("/{passID}", h.handleUpdate)
	passRouter.Delete("/{passID}", h.handleDelete)
	passRouter.Post("/{passID}/renew", h.handleRenew)
	r.Mount("/passes", passRouter)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreatePassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	pass, err := h.passes.Issue(ctx, requestcontext.ResidentID(ctx), req)
	if err != nil {
		h.logFailure(ctx, "issue pass", err)
		shared.WriteError(w, err)
		return
	}
	h.writePass(ctx, w, http.StatusCreated, pass)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passes, err := h.passes.ListByResident(ctx, requestcontext.ResidentID(ctx))
	if err != nil {
		h.logFailure(ctx, "list passes", err)
		shared.WriteError(w, err)
		return
	}
	out := make([]models.PassResponse, 0, len(passes))
	for _, pass := range passes {
		resp, err := h.toResponse(pass)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		out = append(out, resp)
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "passID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pass, err := h.passes.Get(ctx, requestcontext.ResidentID(ctx), passID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.writePass(ctx, w, http.StatusOK, pass)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "passID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.UpdatePassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	pass, err := h.passes.Update(ctx, requestcontext.ResidentID(ctx), passID, req)
	if err != nil {
		h.logFailure(ctx, "update pass", err)
		shared.WriteError(w, err)
		return
	}
	h.writePass(ctx, w, http.StatusOK, pass)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "passID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.passes.Delete(ctx, requestcontext.ResidentID(ctx), passID); err != nil {
		h.logFailure(ctx, "delete pass", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passID, err := id.ParsePassID(chi.URLParam(r, "passID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.RenewPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	pass, err := h.passes.Renew(ctx, requestcontext.ResidentID(ctx), passID, req.DurationMinutes)
	if err != nil {
		h.logFailure(ctx, "renew pass", err)
		shared.WriteError(w, err)
		return
	}
	h.writePass(ctx, w, http.StatusOK, pass)
}

func (h *Handler) writePass(ctx context.Context, w http.ResponseWriter, status int, pass models.VisitorPass) {
	resp, err := h.toResponse(pass)
	if err != nil {
		h.logFailure(ctx, "encode qr", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, status, resp)
}

func (h *Handler) toResponse(pass models.VisitorPass) (models.PassResponse, error) {
	encoded, err := h.passes.EncodeQR(pass)
	if err != nil {
		return models.PassResponse{}, err
	}
	return models.PassResponse{
		ID:              pass.ID.String(),
		VisitorName:     pass.VisitorName,
		VisitorPhone:    pass.VisitorPhone,
		QRCode:          encoded,
		DurationMinutes: pass.DurationMinutes,
		CreatedAt:       pass.CreatedAt,
		ExpiresAt:       pass.ExpiresAt,
	}, nil
}

func (h *Handler) logFailure(ctx context.Context, op string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "pass operation failed",
			"op", op,
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, "pass operation rejected",
		"op", op,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
