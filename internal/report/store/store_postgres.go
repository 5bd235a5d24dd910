package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gatepass/internal/report/models"
	id "gatepass/pkg/domain"
)

// PostgresQueries runs the report joins through a pgx pool, separate from the
// lib/pq write path so heavy report reads do not compete for the transactional
// pool.
type PostgresQueries struct {
	pool *pgxpool.Pool
}

func NewPostgresQueries(pool *pgxpool.Pool) *PostgresQueries {
	return &PostgresQueries{pool: pool}
}

func (q *PostgresQueries) PassesByResidence(ctx context.Context, residenceID id.ResidenceID, from, to time.Time) ([]models.PassRecord, error) {
	query := `
		SELECT p.id, p.resident_id, r.name, p.visitor_name, p.visitor_phone, p.created_at, p.expires_at
		FROM visitor_passes p
		JOIN residents r ON r.id = p.resident_id
		WHERE r.residence_id = $1 AND p.created_at BETWEEN $2 AND $3
		ORDER BY p.created_at
	`
	rows, err := q.pool.Query(ctx, query, uuid.UUID(residenceID), from, to)
	if err != nil {
		return nil, fmt.Errorf("passes by residence: %w", err)
	}
	defer rows.Close()

	var out []models.PassRecord
	for rows.Next() {
		var (
			rec        models.PassRecord
			passID     uuid.UUID
			residentID uuid.UUID
		)
		err := rows.Scan(&passID, &residentID, &rec.ResidentName, &rec.VisitorName,
			&rec.VisitorPhone, &rec.CreatedAt, &rec.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("scan pass record: %w", err)
		}
		rec.PassID = id.PassID(passID)
		rec.ResidentID = id.ResidentID(residentID)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (q *PostgresQueries) ScansByResidence(ctx context.Context, residenceID id.ResidenceID, from, to time.Time) ([]models.ScanRecord, error) {
	query := `
		SELECT s.id, s.pass_id, s.guard_id, p.resident_id, p.visitor_name, s.confirmed, s.scanned_at
		FROM guard_scans s
		JOIN visitor_passes p ON p.id = s.pass_id
		JOIN residents r ON r.id = p.resident_id
		WHERE r.residence_id = $1 AND s.confirmed IS NOT NULL
		  AND s.scanned_at BETWEEN $2 AND $3
		ORDER BY s.scanned_at
	`
	rows, err := q.pool.Query(ctx, query, uuid.UUID(residenceID), from, to)
	if err != nil {
		return nil, fmt.Errorf("scans by residence: %w", err)
	}
	defer rows.Close()

	var out []models.ScanRecord
	for rows.Next() {
		var (
			rec        models.ScanRecord
			scanID     uuid.UUID
			passID     uuid.UUID
			guardID    uuid.UUID
			residentID uuid.UUID
		)
		err := rows.Scan(&scanID, &passID, &guardID, &residentID, &rec.VisitorName,
			&rec.Approved, &rec.ScannedAt)
		if err != nil {
			return nil, fmt.Errorf("scan scan record: %w", err)
		}
		rec.ScanID = id.ScanID(scanID)
		rec.PassID = id.PassID(passID)
		rec.GuardID = id.GuardID(guardID)
		rec.ResidentID = id.ResidentID(residentID)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (q *PostgresQueries) ListPasses(ctx context.Context, offset, limit int) (models.PassPage, error) {
	page := models.PassPage{Offset: offset}
	err := q.pool.QueryRow(ctx, `SELECT COUNT(*) FROM visitor_passes`).Scan(&page.Total)
	if err != nil {
		return models.PassPage{}, fmt.Errorf("count passes: %w", err)
	}

	query := `
		SELECT p.id, p.resident_id, r.name, p.visitor_name, p.visitor_phone, p.created_at, p.expires_at
		FROM visitor_passes p
		JOIN residents r ON r.id = p.resident_id
		ORDER BY p.created_at
		OFFSET $1 LIMIT $2
	`
	rows, err := q.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return models.PassPage{}, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec        models.PassRecord
			passID     uuid.UUID
			residentID uuid.UUID
		)
		err := rows.Scan(&passID, &residentID, &rec.ResidentName, &rec.VisitorName,
			&rec.VisitorPhone, &rec.CreatedAt, &rec.ExpiresAt)
		if err != nil {
			return models.PassPage{}, fmt.Errorf("scan pass record: %w", err)
		}
		rec.PassID = id.PassID(passID)
		rec.ResidentID = id.ResidentID(residentID)
		page.Passes = append(page.Passes, rec)
	}
	return page, rows.Err()
}

func (q *PostgresQueries) Statistics(ctx context.Context, now time.Time) (models.Statistics, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM visitor_passes),
			(SELECT COUNT(*) FROM visitor_passes WHERE expires_at > $1),
			(SELECT COUNT(*) FROM guard_scans WHERE confirmed IS NOT NULL)
	`
	var stats models.Statistics
	err := q.pool.QueryRow(ctx, query, now).Scan(&stats.TotalPasses, &stats.ActivePasses, &stats.TotalScans)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("statistics: %w", err)
	}
	return stats, nil
}
