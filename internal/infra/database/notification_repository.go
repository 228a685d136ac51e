package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

const notificationColumns = `id, user_id, message, read, link, meta, created_at`

// InsertBatch writes the whole batch in one multi-row INSERT. A single
// statement means the store either takes every notification of the tick or
// none of them.
func (r *NotificationRepository) InsertBatch(ctx context.Context, batch []*entity.Notification) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO notifications (` + notificationColumns + `) VALUES `)

	args := make([]any, 0, len(batch)*7)
	for i, n := range batch {
		meta, err := json.Marshal(n.Meta)
		if err != nil {
			return 0, err
		}

		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		args = append(args,
			n.ID,
			nullString(n.UserID),
			n.Message,
			n.Read,
			nullString(n.Link),
			string(meta), // jsonb wants text, not bytea
			n.CreatedAt,
		)
	}

	res, err := r.DB.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}

	count, err := res.RowsAffected()
	return int(count), err
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.InsertBatch(ctx, []*entity.Notification{n})
	return err
}

func (r *NotificationRepository) FindAll(ctx context.Context) ([]entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []entity.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkRead flips the read flag. Content never changes after creation.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) (*entity.Notification, error) {
	query := `
		UPDATE notifications SET read = TRUE WHERE id = $1
		RETURNING ` + notificationColumns + `
	`
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, entity.ErrNotificationNotFound)
}

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var n entity.Notification
	var userID, link sql.NullString
	var meta []byte

	err := row.Scan(
		&n.ID,
		&userID,
		&n.Message,
		&n.Read,
		&link,
		&meta,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.UserID = userID.String
	n.Link = link.String
	if err := json.Unmarshal(meta, &n.Meta); err != nil {
		return nil, err
	}
	return &n, nil
}
