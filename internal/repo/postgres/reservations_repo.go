package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkowalczyk/libreserve/internal/domain/reservation"
	"github.com/mkowalczyk/libreserve/internal/observability"
)

type ReservationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewReservationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReservationsRepo {
	return &ReservationsRepo{pool: pool, prom: prom}
}

func (r *ReservationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const viewColumns = `r.id, r.user_id, r.book_id, r.start_date, r.end_date, r.status, r.created_at, r.updated_at, u.name, b.title`

const viewJoin = ` FROM reservations r
	JOIN users u ON u.id = r.user_id
	JOIN books b ON b.id = r.book_id`

func scanView(row pgx.Row) (reservation.View, error) {
	var v reservation.View
	err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.BookID,
		&v.StartDate,
		&v.EndDate,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
		&v.UserName,
		&v.BookTitle,
	)
	return v, err
}

// Create persists a reservation. The book-exists check happens before
// this call and is a separate store step on purpose: there is no
// cross-document transaction in this design.
func (r *ReservationsRepo) Create(ctx context.Context, res reservation.Reservation) error {
	return r.observe("reservations.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO reservations (id, user_id, book_id, start_date, end_date, status, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			res.ID, res.UserID, res.BookID, res.StartDate, res.EndDate, res.Status, res.CreatedAt, res.UpdatedAt,
		)
		return e
	})
}

func (r *ReservationsRepo) GetByID(ctx context.Context, id string) (reservation.View, error) {
	var v reservation.View
	err := r.observe("reservations.get_by_id", func() error {
		var e error
		v, e = scanView(r.pool.QueryRow(ctx,
			`SELECT `+viewColumns+viewJoin+` WHERE r.id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reservation.View{}, reservation.ErrNotFound
		}
		return reservation.View{}, err
	}

	return v, nil
}

// List returns every reservation joined with requester name and book
// title. No filtering or pagination.
func (r *ReservationsRepo) List(ctx context.Context) ([]reservation.View, error) {
	var rows pgx.Rows
	err := r.observe("reservations.list", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT `+viewColumns+viewJoin+` ORDER BY r.created_at ASC, r.id ASC`)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	views := make([]reservation.View, 0)

	for rows.Next() {
		v, e := scanView(rows)
		if e != nil {
			return nil, e
		}
		views = append(views, v)
	}

	return views, rows.Err()
}

// UpdateStatus overwrites the status unconditionally. Any status may
// replace any other; there is no transition table.
func (r *ReservationsRepo) UpdateStatus(ctx context.Context, id string, status reservation.Status) (reservation.View, error) {
	var v reservation.View
	err := r.observe("reservations.update_status", func() error {
		var e error
		v, e = scanView(r.pool.QueryRow(ctx,
			`WITH updated AS (
				UPDATE reservations SET status = $2, updated_at = NOW()
				WHERE id = $1
				RETURNING id, user_id, book_id, start_date, end_date, status, created_at, updated_at
			)
			SELECT r.id, r.user_id, r.book_id, r.start_date, r.end_date, r.status, r.created_at, r.updated_at, u.name, b.title
			FROM updated r
			JOIN users u ON u.id = r.user_id
			JOIN books b ON b.id = r.book_id`,
			id, status,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reservation.View{}, reservation.ErrNotFound
		}
		return reservation.View{}, err
	}

	return v, nil
}
