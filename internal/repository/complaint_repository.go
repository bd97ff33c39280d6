package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-portal/internal/domain"
)

// ComplaintRepository encapsulates complaint persistence. Every lookup is
// scoped by domain; an id from another domain behaves exactly like a missing one.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	List(ctx context.Context, d domain.Domain) ([]domain.Complaint, error)
	Get(ctx context.Context, d domain.Domain, id string) (*domain.Complaint, error)
	// ApplyTransition moves the complaint to status, serialized per id. When
	// the committed status already equals status nothing is written.
	ApplyTransition(ctx context.Context, d domain.Domain, id string, status domain.ComplaintStatus, at time.Time) (domain.TransitionResult, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, domain, name, roll_number, stream, phone, email, complaint_text,
               lab_number, attachment, attachment_type, status, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertComplaint = `
        INSERT INTO complaints (id, domain, name, roll_number, stream, phone, email, complaint_text,
            lab_number, attachment, attachment_type, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	s := complaint.Submitter
	if _, err := tx.Exec(ctx, insertComplaint,
		complaint.ID,
		complaint.Domain,
		s.Name,
		s.RollNumber,
		s.Stream,
		s.Phone,
		s.Email,
		s.ComplaintText,
		s.LabNumber,
		complaint.Attachment,
		complaint.AttachmentType,
		complaint.Status,
		complaint.CreatedAt,
		complaint.UpdatedAt,
	); err != nil {
		return err
	}

	const insertHistory = `
        INSERT INTO complaint_status_history (complaint_id, status, changed_at)
        VALUES ($1,$2,$3)`
	for _, change := range complaint.StatusHistory {
		if _, err := tx.Exec(ctx, insertHistory, complaint.ID, change.Status, change.ChangedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *complaintRepository) List(ctx context.Context, d domain.Domain) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE domain=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, d)
	if err != nil {
		return nil, err
	}
	complaints, err := scanComplaints(rows)
	if err != nil {
		return nil, err
	}
	if err := loadHistory(ctx, r.pool, complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (r *complaintRepository) Get(ctx context.Context, d domain.Domain, id string) (*domain.Complaint, error) {
	return getComplaint(ctx, r.pool, d, id)
}

func (r *complaintRepository) ApplyTransition(ctx context.Context, d domain.Domain, id string, status domain.ComplaintStatus, at time.Time) (domain.TransitionResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.TransitionResult{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var current domain.ComplaintStatus
	if err := tx.QueryRow(ctx,
		`SELECT status FROM complaints WHERE domain=$1 AND id=$2 FOR UPDATE`, d, id,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TransitionResult{}, ErrNotFound
		}
		return domain.TransitionResult{}, err
	}

	result := domain.TransitionResult{Previous: current}
	if current != status {
		if _, err := tx.Exec(ctx,
			`UPDATE complaints SET status=$1, updated_at=$2 WHERE domain=$3 AND id=$4`,
			status, at, d, id,
		); err != nil {
			return domain.TransitionResult{}, err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO complaint_status_history (complaint_id, status, changed_at) VALUES ($1,$2,$3)`,
			id, status, at,
		); err != nil {
			return domain.TransitionResult{}, err
		}
		result.Applied = true
	}

	complaint, err := getComplaint(ctx, tx, d, id)
	if err != nil {
		return domain.TransitionResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.TransitionResult{}, err
	}
	result.Complaint = complaint
	return result, nil
}

func getComplaint(ctx context.Context, q querier, d domain.Domain, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE domain=$1 AND id=$2`
	rows, err := q.Query(ctx, query, d, id)
	if err != nil {
		return nil, err
	}
	complaints, err := scanComplaints(rows)
	if err != nil {
		return nil, err
	}
	if len(complaints) == 0 {
		return nil, ErrNotFound
	}
	if err := loadHistory(ctx, q, complaints); err != nil {
		return nil, err
	}
	return &complaints[0], nil
}

func loadHistory(ctx context.Context, q querier, complaints []domain.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}
	ids := make([]string, len(complaints))
	index := make(map[string]int, len(complaints))
	for i := range complaints {
		ids[i] = complaints[i].ID
		index[complaints[i].ID] = i
	}

	const query = `
        SELECT complaint_id, status, changed_at
        FROM complaint_status_history WHERE complaint_id = ANY($1) ORDER BY id ASC`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			complaintID string
			change      domain.StatusChange
		)
		if err := rows.Scan(&complaintID, &change.Status, &change.ChangedAt); err != nil {
			return err
		}
		if i, ok := index[complaintID]; ok {
			complaints[i].StatusHistory = append(complaints[i].StatusHistory, change)
		}
	}
	return rows.Err()
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	defer rows.Close()
	result := []domain.Complaint{}
	for rows.Next() {
		var c domain.Complaint
		if err := rows.Scan(
			&c.ID,
			&c.Domain,
			&c.Submitter.Name,
			&c.Submitter.RollNumber,
			&c.Submitter.Stream,
			&c.Submitter.Phone,
			&c.Submitter.Email,
			&c.Submitter.ComplaintText,
			&c.Submitter.LabNumber,
			&c.Attachment,
			&c.AttachmentType,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
