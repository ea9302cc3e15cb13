package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkowalczyk/libreserve/internal/domain/user"
	"github.com/mkowalczyk/libreserve/internal/observability"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, name, email, phone_number, password_hash, is_approved, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PhoneNumber,
		&u.PasswordHash,
		&u.IsApproved,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.observe("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			u.ID, u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.IsApproved, u.IsAdmin, u.CreatedAt, u.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrEmailTaken
		}
		return err
	}

	return nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User
	err := r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var rows pgx.Rows
	err := r.observe("users.list", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	users := make([]user.User, 0)

	for rows.Next() {
		u, e := scanUser(rows)
		if e != nil {
			return nil, e
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return users, nil
}

// ListAdminIDs backs NotifyAdmins, which only needs targets.
func (r *UsersRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	var rows pgx.Rows
	err := r.observe("users.list_admin_ids", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT id FROM users WHERE is_admin = TRUE ORDER BY created_at ASC, id ASC`)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	ids := make([]string, 0)

	for rows.Next() {
		var id string
		if e := rows.Scan(&id); e != nil {
			return nil, e
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *UsersRepo) SetApproved(ctx context.Context, id string) error {
	var tag pgconn.CommandTag
	err := r.observe("users.set_approved", func() error {
		var e error
		tag, e = r.pool.Exec(ctx,
			`UPDATE users SET is_approved = TRUE, updated_at = NOW() WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

// UpdateProfile overwrites only the provided fields. COALESCE keeps
// the stored value when the caller sent nothing for a field.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	var u user.User
	err := r.observe("users.update_profile", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
				SET name = COALESCE($2, name),
					phone_number = COALESCE($3, phone_number),
					updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, req.Name, req.PhoneNumber,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}
