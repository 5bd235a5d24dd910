package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	passmodels "gatepass/internal/pass/models"
	"gatepass/internal/platform/middleware"
	"gatepass/internal/scan/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

type stubService struct {
	scanResult    passmodels.ValidationResult
	scanErr       error
	confirmResult models.ConfirmResult
	confirmErr    error
	history       []models.ScanDecision
	stats         models.GuardStats

	confirmedWith struct {
		guardID  id.GuardID
		passID   id.PassID
		decision id.Decision
	}
}

func (s *stubService) Scan(_ context.Context, _ id.PassID) (passmodels.ValidationResult, error) {
	return s.scanResult, s.scanErr
}

func (s *stubService) Confirm(_ context.Context, guardID id.GuardID, passID id.PassID, decision id.Decision) (models.ConfirmResult, error) {
	s.confirmedWith.guardID = guardID
	s.confirmedWith.passID = passID
	s.confirmedWith.decision = decision
	return s.confirmResult, s.confirmErr
}

func (s *stubService) History(_ context.Context, _ id.GuardID, _ int) ([]models.ScanDecision, error) {
	return s.history, nil
}

func (s *stubService) Stats(_ context.Context, _ id.GuardID) (models.GuardStats, error) {
	return s.stats, nil
}

type stubValidator struct {
	claims *middleware.JWTClaims
}

func (v stubValidator) ValidateToken(string) (*middleware.JWTClaims, error) {
	if v.claims == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func newServer(svc Service, claims *middleware.JWTClaims) *httptest.Server {
	h := New(svc, slog.New(slog.DiscardHandler), stubValidator{claims: claims})
	r := chi.NewRouter()
	h.Register(r)
	return httptest.NewServer(r)
}

func post(t *testing.T, server *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, server *httptest.Server, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func guardClaims(guardID id.GuardID) *middleware.JWTClaims {
	return &middleware.JWTClaims{SubjectID: guardID.String(), Role: middleware.RoleGuard}
}

func TestHandleScan(t *testing.T) {
	guardID := id.NewGuardID()

	t.Run("valid pass returns the snapshots", func(t *testing.T) {
		svc := &stubService{scanResult: passmodels.ValidationResult{
			Valid:    true,
			Visitor:  &passmodels.VisitorInfo{Name: "Moussa Diop", PhoneNumber: "+221771234567"},
			Resident: &passmodels.ResidentInfo{Name: "Awa Ndiaye", Apartment: "B12"},
		}}
		server := newServer(svc, guardClaims(guardID))
		defer server.Close()

		resp := post(t, server, "/guard-scans/scan", models.ScanRequest{PassID: id.NewPassID().String()})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body passmodels.ValidationResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Valid)
		require.NotNil(t, body.Data)
		assert.Equal(t, "Moussa Diop", body.Data.Visitor.Name)
		assert.Equal(t, "B12", body.Data.Resident.Apartment)
	})

	t.Run("expired pass reads as invalid with a message", func(t *testing.T) {
		svc := &stubService{scanResult: passmodels.ValidationResult{
			Valid: false, Reason: passmodels.ReasonExpired,
		}}
		server := newServer(svc, guardClaims(guardID))
		defer server.Close()

		resp := post(t, server, "/guard-scans/scan", models.ScanRequest{PassID: id.NewPassID().String()})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body passmodels.ValidationResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.False(t, body.Valid)
		assert.Equal(t, "QR Code expired", body.Message)
		assert.Nil(t, body.Data)
	})

	t.Run("malformed pass id is a bad request", func(t *testing.T) {
		server := newServer(&stubService{}, guardClaims(guardID))
		defer server.Close()

		resp := post(t, server, "/guard-scans/scan", models.ScanRequest{PassID: "nope"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		server := newServer(&stubService{}, nil)
		defer server.Close()

		resp := post(t, server, "/guard-scans/scan", models.ScanRequest{PassID: id.NewPassID().String()})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHandleConfirm(t *testing.T) {
	guardID := id.NewGuardID()
	passID := id.NewPassID()
	scannedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("a recorded denial echoes the decision", func(t *testing.T) {
		svc := &stubService{confirmResult: models.ConfirmResult{
			Outcome: models.OutcomeRecorded,
			Scan: models.ScanDecision{
				ID: id.NewScanID(), PassID: passID, GuardID: guardID,
				Confirmed: id.DecisionDenied.Confirmed(), ScannedAt: scannedAt,
			},
		}}
		server := newServer(svc, guardClaims(guardID))
		defer server.Close()

		resp := post(t, server, "/guard-scans/confirm", models.ConfirmRequest{PassID: passID.String(), Allowed: false})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body models.ConfirmResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "denied", body.Decision)
		assert.False(t, body.AlreadyDecided)
		assert.Equal(t, guardID, svc.confirmedWith.guardID)
		assert.Equal(t, passID, svc.confirmedWith.passID)
		assert.Equal(t, id.DecisionDenied, svc.confirmedWith.decision)
	})

	t.Run("an earlier decision is reported as already decided", func(t *testing.T) {
		winner := id.NewGuardID()
		svc := &stubService{confirmResult: models.ConfirmResult{
			Outcome: models.OutcomeAlreadyDecided,
			Scan: models.ScanDecision{
				ID: id.NewScanID(), PassID: passID, GuardID: winner,
				Confirmed: id.DecisionApproved.Confirmed(), ScannedAt: scannedAt,
			},
		}}
		server := newServer(svc, guardClaims(guardID))
		defer server.Close()

		resp := post(t, server, "/guard-scans/confirm", models.ConfirmRequest{PassID: passID.String(), Allowed: false})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body models.ConfirmResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.AlreadyDecided)
		assert.Equal(t, "approved", body.Decision)
		assert.Equal(t, winner.String(), body.GuardID)
	})

	t.Run("an expired pass maps to a 400", func(t *testing.T) {
		svc := &stubService{confirmErr: dErrors.New(dErrors.CodeValidation, "pass has expired")}
		server := newServer(svc, guardClaims(guardID))
		defer server.Close()

		resp := post(t, server, "/guard-scans/confirm", models.ConfirmRequest{PassID: passID.String(), Allowed: true})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("an unknown pass maps to a 404", func(t *testing.T) {
		svc := &stubService{confirmErr: dErrors.New(dErrors.CodeNotFound, "pass not found")}
		server := newServer(svc, guardClaims(guardID))
		defer server.Close()

		resp := post(t, server, "/guard-scans/confirm", models.ConfirmRequest{PassID: passID.String(), Allowed: true})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandleHistoryAndStats(t *testing.T) {
	guardID := id.NewGuardID()
	scannedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc := &stubService{
		history: []models.ScanDecision{{
			ID: id.NewScanID(), PassID: id.NewPassID(), GuardID: guardID,
			Confirmed: id.DecisionApproved.Confirmed(), ScannedAt: scannedAt,
		}},
		stats: models.GuardStats{GuardID: guardID, TotalScans: 4, TotalApproved: 3, TotalDenied: 1},
	}
	server := newServer(svc, guardClaims(guardID))
	defer server.Close()

	resp := get(t, server, "/guard-scans/history")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.HistoryEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, "approved", history[0].Decision)

	resp = get(t, server, "/guard-scans/history?limit=zero")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, server, "/guard-scans/stats")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 4, stats.TotalScans)
	assert.Equal(t, 3, stats.TotalApproved)
	assert.Equal(t, 1, stats.TotalDenied)
}
