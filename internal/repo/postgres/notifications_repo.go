package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkowalczyk/libreserve/internal/domain/notification"
	"github.com/mkowalczyk/libreserve/internal/observability"
)

type NotificationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotificationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotificationsRepo {
	return &NotificationsRepo{pool: pool, prom: prom}
}

func (r *NotificationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *NotificationsRepo) Insert(ctx context.Context, n notification.Notification) error {
	return r.observe("notifications.insert", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO notifications (id, user_id, message, type, is_read, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			n.ID, n.UserID, n.Message, n.Type, n.IsRead, n.CreatedAt,
		)
		return e
	})
}

// ListForUser returns the user's notifications newest-created first.
func (r *NotificationsRepo) ListForUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	var rows pgx.Rows
	err := r.observe("notifications.list_for_user", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT id, user_id, message, type, is_read, created_at
			 FROM notifications
			 WHERE user_id = $1
			 ORDER BY created_at DESC, id DESC`,
			userID,
		)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	items := make([]notification.Notification, 0)

	for rows.Next() {
		var n notification.Notification
		if e := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); e != nil {
			return nil, e
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

// MarkRead flips is_read for one of the owner's notifications. The
// owner filter is part of the statement so strangers see a not-found.
func (r *NotificationsRepo) MarkRead(ctx context.Context, id, userID string) error {
	var tag pgconn.CommandTag
	err := r.observe("notifications.mark_read", func() error {
		var e error
		tag, e = r.pool.Exec(ctx,
			`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
			id, userID,
		)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}

	return nil
}
