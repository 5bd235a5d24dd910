package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/directory"
	"gatepass/internal/pass/models"
	"gatepass/internal/pass/qr"
	"gatepass/internal/pass/store"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/requestcontext"
	"gatepass/pkg/testutil"
)

const testPhonePattern = `^\+221\d{9}$`

type fixture struct {
	svc      *Service
	passes   *store.InMemoryStore
	dir      *directory.InMemoryStore
	resident directory.Resident
	audit    *audit.InMemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	passes := store.NewInMemoryStore()
	dir := directory.NewInMemoryStore()
	auditStore := audit.NewInMemoryStore()

	residence := directory.Residence{ID: id.NewResidenceID(), Name: "Les Almadies"}
	require.NoError(t, dir.SaveResidence(context.Background(), residence))
	resident := directory.Resident{
		ID:          id.NewResidentID(),
		Name:        "Awa Ndiaye",
		PhoneNumber: "+221770000001",
		Apartment:   "B12",
		ResidenceID: residence.ID,
	}
	require.NoError(t, dir.SaveResident(context.Background(), resident))

	svc, err := NewService(passes, dir, nil, qr.Base64Encoder{}, audit.NewPublisher(auditStore), nil, testPhonePattern)
	require.NoError(t, err)
	return &fixture{svc: svc, passes: passes, dir: dir, resident: resident, audit: auditStore}
}

func ctxAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func TestIssue(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	testutil.Given(t, "a resident issuing a pass", func(t *testing.T) {
		f := newFixture(t)
		pass, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
			VisitorName:     "Moussa Diop",
			VisitorPhone:    "+221771234567",
			DurationMinutes: 30,
		})
		require.NoError(t, err)

		testutil.Then(t, "the validity window is created-at plus duration", func(t *testing.T) {
			assert.Equal(t, t0, pass.CreatedAt)
			assert.Equal(t, t0.Add(30*time.Minute), pass.ExpiresAt)
			assert.True(t, pass.ExpiresAt.After(pass.CreatedAt))
		})
		testutil.Then(t, "the QR payload carries the visitor and host", func(t *testing.T) {
			assert.Contains(t, pass.QRPayload, "Moussa Diop")
			assert.Contains(t, pass.QRPayload, "+221771234567")
			assert.Contains(t, pass.QRPayload, f.resident.ID.String())
		})
		testutil.Then(t, "an issuance audit event is recorded", func(t *testing.T) {
			events, err := f.audit.ListByPass(context.Background(), pass.ID)
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, audit.ActionPassIssued, events[0].Action)
		})
	})

	testutil.Given(t, "invalid input", func(t *testing.T) {
		f := newFixture(t)

		testutil.Then(t, "a local-format phone is rejected", func(t *testing.T) {
			_, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
				VisitorName: "Moussa Diop", VisitorPhone: "0700000000", DurationMinutes: 30,
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
		testutil.Then(t, "an empty visitor name is rejected", func(t *testing.T) {
			_, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
				VisitorPhone: "+221771234567", DurationMinutes: 30,
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
		testutil.Then(t, "a non-positive duration is rejected", func(t *testing.T) {
			for _, minutes := range []int{0, -5} {
				_, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
					VisitorName: "Moussa Diop", VisitorPhone: "+221771234567", DurationMinutes: minutes,
				})
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			}
		})
		testutil.Then(t, "an unknown resident is rejected", func(t *testing.T) {
			_, err := f.svc.Issue(ctxAt(t0), id.NewResidentID(), models.CreatePassRequest{
				VisitorName: "Moussa Diop", VisitorPhone: "+221771234567", DurationMinutes: 30,
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		})
	})
}

func TestIssueDuplicatePhoneLifecycle(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	f := newFixture(t)
	req := models.CreatePassRequest{
		VisitorName: "Moussa Diop", VisitorPhone: "+221771234567", DurationMinutes: 30,
	}

	first, err := f.svc.Issue(ctxAt(t0), f.resident.ID, req)
	require.NoError(t, err)

	testutil.When(t, "a second pass is issued for the same visitor phone", func(t *testing.T) {
		_, err := f.svc.Issue(ctxAt(t0.Add(time.Minute)), f.resident.ID, req)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	testutil.When(t, "the first pass is deleted", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(ctxAt(t0.Add(2*time.Minute)), f.resident.ID, first.ID))

		testutil.Then(t, "the phone is free for a new pass", func(t *testing.T) {
			_, err := f.svc.Issue(ctxAt(t0.Add(3*time.Minute)), f.resident.ID, req)
			require.NoError(t, err)
		})
	})
}

func TestRenew(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	f := newFixture(t)
	pass, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
		VisitorName: "Moussa Diop", VisitorPhone: "+221771234567", DurationMinutes: 30,
	})
	require.NoError(t, err)

	testutil.When(t, "the pass is renewed after expiry", func(t *testing.T) {
		t1 := t0.Add(45 * time.Minute)
		renewed, err := f.svc.Renew(ctxAt(t1), f.resident.ID, pass.ID, 60)
		require.NoError(t, err)

		testutil.Then(t, "identity fields are stable", func(t *testing.T) {
			assert.Equal(t, pass.ID, renewed.ID)
			assert.Equal(t, pass.ResidentID, renewed.ResidentID)
			assert.Equal(t, pass.CreatedAt, renewed.CreatedAt)
		})
		testutil.Then(t, "the window and payload are reset", func(t *testing.T) {
			assert.Equal(t, t1.Add(60*time.Minute), renewed.ExpiresAt)
			assert.NotEqual(t, pass.QRPayload, renewed.QRPayload)
			assert.Contains(t, renewed.QRPayload, "60 minutes")
		})
	})

	testutil.When(t, "the duration is not positive", func(t *testing.T) {
		_, err := f.svc.Renew(ctxAt(t0), f.resident.ID, pass.ID, 0)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	testutil.When(t, "the pass does not exist", func(t *testing.T) {
		_, err := f.svc.Renew(ctxAt(t0), f.resident.ID, id.NewPassID(), 30)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestOwnershipReadsAsNotFound(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	f := newFixture(t)
	pass, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
		VisitorName: "Moussa Diop", VisitorPhone: "+221771234567", DurationMinutes: 30,
	})
	require.NoError(t, err)

	other := directory.Resident{
		ID:          id.NewResidentID(),
		Name:        "Cheikh Ba",
		PhoneNumber: "+221770000002",
		Apartment:   "C3",
		ResidenceID: f.resident.ResidenceID,
	}
	require.NoError(t, f.dir.SaveResident(context.Background(), other))

	_, err = f.svc.Get(ctxAt(t0), other.ID, pass.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	err = f.svc.Delete(ctxAt(t0), other.ID, pass.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestValidate(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	f := newFixture(t)
	pass, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
		VisitorName: "Moussa Diop", VisitorPhone: "+221771234567", DurationMinutes: 30,
	})
	require.NoError(t, err)

	testutil.Then(t, "the pass is valid 29 minutes in", func(t *testing.T) {
		result, err := f.svc.Validate(ctxAt(t0.Add(29*time.Minute)), pass.ID)
		require.NoError(t, err)
		require.True(t, result.Valid)
		assert.Equal(t, "Moussa Diop", result.Visitor.Name)
		assert.Equal(t, f.resident.Name, result.Resident.Name)
		assert.Equal(t, f.resident.Apartment, result.Resident.Apartment)
	})

	testutil.Then(t, "the pass is expired exactly at the boundary", func(t *testing.T) {
		result, err := f.svc.Validate(ctxAt(t0.Add(30*time.Minute)), pass.ID)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, models.ReasonExpired, result.Reason)
	})

	testutil.Then(t, "the pass is expired 31 minutes in, and stays expired", func(t *testing.T) {
		result, err := f.svc.Validate(ctxAt(t0.Add(31*time.Minute)), pass.ID)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, models.ReasonExpired, result.Reason)
		assert.Equal(t, pass.CreatedAt, result.CreatedAt)
		assert.Equal(t, pass.ExpiresAt, result.ExpiresAt)

		later, err := f.svc.Validate(ctxAt(t0.Add(2*time.Hour)), pass.ID)
		require.NoError(t, err)
		assert.False(t, later.Valid)
	})

	testutil.Then(t, "an unknown pass reads as not found", func(t *testing.T) {
		result, err := f.svc.Validate(ctxAt(t0), id.NewPassID())
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, models.ReasonNotFound, result.Reason)
	})
}

func TestUpdateRederivesPayload(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	f := newFixture(t)
	pass, err := f.svc.Issue(ctxAt(t0), f.resident.ID, models.CreatePassRequest{
		VisitorName: "Moussa Diop", VisitorPhone: "+221771234567", DurationMinutes: 30,
	})
	require.NoError(t, err)

	name := "Moussa D. Diop"
	updated, err := f.svc.Update(ctxAt(t0.Add(time.Minute)), f.resident.ID, pass.ID, models.UpdatePassRequest{
		VisitorName: &name,
	})
	require.NoError(t, err)
	assert.Contains(t, updated.QRPayload, name)
	assert.Equal(t, pass.ExpiresAt, updated.ExpiresAt)

	badPhone := "12345"
	_, err = f.svc.Update(ctxAt(t0), f.resident.ID, pass.ID, models.UpdatePassRequest{VisitorPhone: &badPhone})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
