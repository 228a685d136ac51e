package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type FollowUpRepository struct {
	DB *sql.DB
}

func NewFollowUpRepository(db *sql.DB) *FollowUpRepository {
	return &FollowUpRepository{DB: db}
}

const followUpColumns = `f.id, f.lead_id, f.customer_id, f.assigned_to, f.title, f.notes, f.follow_up_date, f.status, f.notified, f.created_at, f.updated_at`

// joinedFollowUpQuery resolves the lead/customer names alongside each
// follow-up. LEFT JOIN on purpose: references are weak and the target may
// be gone.
const joinedFollowUpQuery = `
	SELECT ` + followUpColumns + `, l.id, l.name, c.id, c.name
	FROM follow_ups f
	LEFT JOIN leads l ON l.id = f.lead_id
	LEFT JOIN customers c ON c.id = f.customer_id
`

func (r *FollowUpRepository) Create(ctx context.Context, f *entity.FollowUp) error {
	query := `
		INSERT INTO follow_ups (id, lead_id, customer_id, assigned_to, title, notes, follow_up_date, status, notified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		nullString(f.LeadID),
		nullString(f.CustomerID),
		nullString(f.AssignedTo),
		f.Title,
		nullString(f.Notes),
		f.FollowUpDate,
		f.Status,
		f.Notified,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

func (r *FollowUpRepository) FindByID(ctx context.Context, id string) (*entity.FollowUp, error) {
	query := `SELECT ` + followUpColumns + ` FROM follow_ups f WHERE f.id = $1`
	f, err := scanFollowUp(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrFollowUpNotFound
		}
		return nil, err
	}
	return f, nil
}

// FindAll lists every follow-up soonest-first with references resolved.
func (r *FollowUpRepository) FindAll(ctx context.Context) ([]entity.DueFollowUp, error) {
	query := joinedFollowUpQuery + ` ORDER BY f.follow_up_date ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJoinedFollowUps(rows)
}

func (r *FollowUpRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]entity.DueFollowUp, error) {
	query := joinedFollowUpQuery + `
		WHERE f.follow_up_date <= $1
		  AND f.status IN ($2, $3)
		  AND f.notified = FALSE
		LIMIT $4
	`

	rows, err := r.DB.QueryContext(ctx, query,
		now,
		entity.FollowUpStatusPending,
		entity.FollowUpStatusScheduled,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJoinedFollowUps(rows)
}

// MarkNotified closes the idempotency window for the batch: once a row has
// notified = TRUE the due scan never returns it again.
func (r *FollowUpRepository) MarkNotified(ctx context.Context, ids []string) (int64, error) {
	query := `
		UPDATE follow_ups
		SET notified = TRUE, status = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`

	res, err := r.DB.ExecContext(ctx, query, entity.FollowUpStatusDue, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *FollowUpRepository) Update(ctx context.Context, f *entity.FollowUp) error {
	query := `
		UPDATE follow_ups
		SET title = $2, notes = $3, follow_up_date = $4, status = $5,
		    assigned_to = $6, notified = $7, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		f.ID,
		f.Title,
		nullString(f.Notes),
		f.FollowUpDate,
		f.Status,
		nullString(f.AssignedTo),
		f.Notified,
	)
	if err != nil {
		return err
	}
	return requireRow(res, entity.ErrFollowUpNotFound)
}

func (r *FollowUpRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM follow_ups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, entity.ErrFollowUpNotFound)
}

func scanFollowUp(row rowScanner) (*entity.FollowUp, error) {
	var f entity.FollowUp
	var leadID, customerID, assignedTo, notes sql.NullString

	err := row.Scan(
		&f.ID,
		&leadID,
		&customerID,
		&assignedTo,
		&f.Title,
		&notes,
		&f.FollowUpDate,
		&f.Status,
		&f.Notified,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.LeadID = leadID.String
	f.CustomerID = customerID.String
	f.AssignedTo = assignedTo.String
	f.Notes = notes.String
	return &f, nil
}

func collectJoinedFollowUps(rows *sql.Rows) ([]entity.DueFollowUp, error) {
	out := []entity.DueFollowUp{}
	for rows.Next() {
		var d entity.DueFollowUp
		var leadID, customerID, assignedTo, notes sql.NullString
		var joinedLeadID, joinedLeadName, joinedCustomerID, joinedCustomerName sql.NullString

		err := rows.Scan(
			&d.ID,
			&leadID,
			&customerID,
			&assignedTo,
			&d.Title,
			&notes,
			&d.FollowUpDate,
			&d.Status,
			&d.Notified,
			&d.CreatedAt,
			&d.UpdatedAt,
			&joinedLeadID,
			&joinedLeadName,
			&joinedCustomerID,
			&joinedCustomerName,
		)
		if err != nil {
			return nil, err
		}

		d.LeadID = leadID.String
		d.CustomerID = customerID.String
		d.AssignedTo = assignedTo.String
		d.Notes = notes.String

		if joinedLeadID.Valid {
			d.Lead = &entity.LeadRef{ID: joinedLeadID.String, Name: joinedLeadName.String}
		}
		if joinedCustomerID.Valid {
			d.Customer = &entity.CustomerRef{ID: joinedCustomerID.String, Name: joinedCustomerName.String}
		}

		out = append(out, d)
	}
	return out, rows.Err()
}
