package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// CustomerRepository keeps the customer's nested sequences (communication
// logs, project history, documents) in JSONB columns. They are small,
// always read and written alongside the customer, and never queried on
// their own, so child tables would buy nothing.
type CustomerRepository struct {
	DB *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, email, phone, company_name, address, notes, source, origin_lead_id, contact_person, communication_logs, project_history, documents, created_at, updated_at`

func (r *CustomerRepository) Create(ctx context.Context, c *entity.Customer) error {
	contact, logs, projects, docs, err := marshalCustomerJSON(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.DB.ExecContext(ctx, query,
		c.ID,
		c.Name,
		nullString(c.Email),
		nullString(c.Phone),
		nullString(c.CompanyName),
		nullString(c.Address),
		nullString(c.Notes),
		nullString(c.Source),
		nullString(c.OriginLeadID),
		contact,
		logs,
		projects,
		docs,
		c.CreatedAt,
		c.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("customer already exists: %w", err)
		}
		log.Printf("customer repository: insert failed: %v", err)
		return err
	}

	return nil
}

// UpsertByOriginLead inserts the customer keyed on origin_lead_id. When a
// conversion retry hits an existing row, the stored row wins and is scanned
// back into c, so the caller always ends up holding the one real customer.
func (r *CustomerRepository) UpsertByOriginLead(ctx context.Context, c *entity.Customer) error {
	contact, logs, projects, docs, err := marshalCustomerJSON(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (origin_lead_id) WHERE origin_lead_id IS NOT NULL
		DO UPDATE SET updated_at = NOW()
		RETURNING ` + customerColumns + `
	`

	row := r.DB.QueryRowContext(ctx, query,
		c.ID,
		c.Name,
		nullString(c.Email),
		nullString(c.Phone),
		nullString(c.CompanyName),
		nullString(c.Address),
		nullString(c.Notes),
		nullString(c.Source),
		nullString(c.OriginLeadID),
		contact,
		logs,
		projects,
		docs,
		c.CreatedAt,
		c.UpdatedAt,
	)

	stored, err := scanCustomer(row)
	if err != nil {
		return err
	}
	*c = *stored
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := scanCustomer(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrCustomerNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context) ([]entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []entity.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// Update rewrites the customer's editable fields and nested sequences.
// Log/project/document mutations load the row, change the slice and come
// back through here.
func (r *CustomerRepository) Update(ctx context.Context, c *entity.Customer) error {
	contact, logs, projects, docs, err := marshalCustomerJSON(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, company_name = $5, address = $6,
		    notes = $7, contact_person = $8, communication_logs = $9,
		    project_history = $10, documents = $11, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.Name,
		nullString(c.Email),
		nullString(c.Phone),
		nullString(c.CompanyName),
		nullString(c.Address),
		nullString(c.Notes),
		contact,
		logs,
		projects,
		docs,
	)
	if err != nil {
		return err
	}
	return requireRow(res, entity.ErrCustomerNotFound)
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, entity.ErrCustomerNotFound)
}

// JSONB parameters go over the wire as strings: lib/pq would encode
// []byte as bytea, which Postgres refuses to assign to a jsonb column.
func marshalCustomerJSON(c *entity.Customer) (contact, logs, projects, docs string, err error) {
	var b []byte
	if b, err = json.Marshal(c.Contact); err != nil {
		return
	}
	contact = string(b)
	if b, err = json.Marshal(c.CommunicationLogs); err != nil {
		return
	}
	logs = string(b)
	if b, err = json.Marshal(c.ProjectHistory); err != nil {
		return
	}
	projects = string(b)
	if b, err = json.Marshal(c.Documents); err != nil {
		return
	}
	docs = string(b)
	return
}

func scanCustomer(row rowScanner) (*entity.Customer, error) {
	var c entity.Customer
	var email, phone, company, address, notes, source, originLead sql.NullString
	var contact, logs, projects, docs []byte

	err := row.Scan(
		&c.ID,
		&c.Name,
		&email,
		&phone,
		&company,
		&address,
		&notes,
		&source,
		&originLead,
		&contact,
		&logs,
		&projects,
		&docs,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Email = email.String
	c.Phone = phone.String
	c.CompanyName = company.String
	c.Address = address.String
	c.Notes = notes.String
	c.Source = source.String
	c.OriginLeadID = originLead.String

	if err := json.Unmarshal(contact, &c.Contact); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(logs, &c.CommunicationLogs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(projects, &c.ProjectHistory); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(docs, &c.Documents); err != nil {
		return nil, err
	}
	return &c, nil
}
