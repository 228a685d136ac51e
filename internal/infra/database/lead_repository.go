package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, name, email, phone, notes, source, status, priority, converted_at, assigned_to, tags, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		nullString(lead.Notes),
		lead.Source,
		lead.Status,
		lead.Priority,
		lead.ConvertedAt,
		nullString(lead.AssignedTo),
		pq.Array(lead.Tags),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET name = $2, email = $3, phone = $4, notes = $5, source = $6,
		    status = $7, priority = $8, converted_at = $9, assigned_to = $10,
		    tags = $11, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		nullString(lead.Notes),
		lead.Source,
		lead.Status,
		lead.Priority,
		lead.ConvertedAt,
		nullString(lead.AssignedTo),
		pq.Array(lead.Tags),
	)
	if err != nil {
		return err
	}
	return requireRow(res, entity.ErrLeadNotFound)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, entity.ErrLeadNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var email, phone, notes, assignedTo sql.NullString

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&email,
		&phone,
		&notes,
		&lead.Source,
		&lead.Status,
		&lead.Priority,
		&lead.ConvertedAt,
		&assignedTo,
		pq.Array(&lead.Tags),
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Email = email.String
	lead.Phone = phone.String
	lead.Notes = notes.String
	lead.AssignedTo = assignedTo.String
	if lead.Tags == nil {
		lead.Tags = []string{}
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
