package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkowalczyk/libreserve/internal/domain/book"
	"github.com/mkowalczyk/libreserve/internal/observability"
)

type BooksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBooksRepo(pool *pgxpool.Pool, prom *observability.Prom) *BooksRepo {
	return &BooksRepo{pool: pool, prom: prom}
}

func (r *BooksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const bookColumns = `id, title, author, publication_date, description, created_at, updated_at`

func scanBook(row pgx.Row) (book.Book, error) {
	var b book.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.PublicationDate,
		&b.Description,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func (r *BooksRepo) Create(ctx context.Context, req book.CreateBookRequest) (book.Book, error) {
	b := book.NewFromCreateRequest(req)

	err := r.observe("books.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO books (`+bookColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			b.ID, b.Title, b.Author, b.PublicationDate, b.Description, b.CreatedAt, b.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return book.Book{}, err
	}

	return b, nil
}

func (r *BooksRepo) GetByID(ctx context.Context, id string) (book.Book, error) {
	var b book.Book
	err := r.observe("books.get_by_id", func() error {
		var e error
		b, e = scanBook(r.pool.QueryRow(ctx,
			`SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}

	return b, nil
}

func (r *BooksRepo) List(ctx context.Context) ([]book.Book, error) {
	var rows pgx.Rows
	err := r.observe("books.list", func() error {
		var e error
		rows, e = r.pool.Query(ctx,
			`SELECT `+bookColumns+` FROM books ORDER BY title ASC, id ASC`)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	books := make([]book.Book, 0)

	for rows.Next() {
		b, e := scanBook(rows)
		if e != nil {
			return nil, e
		}
		books = append(books, b)
	}

	return books, rows.Err()
}

// Update is a partial overwrite: only provided fields replace the
// stored ones, absent fields retain their prior value.
func (r *BooksRepo) Update(ctx context.Context, id string, req book.UpdateBookRequest) (book.Book, error) {
	var b book.Book
	err := r.observe("books.update", func() error {
		var e error
		b, e = scanBook(r.pool.QueryRow(ctx,
			`UPDATE books
				SET title = COALESCE($2, title),
					author = COALESCE($3, author),
					publication_date = COALESCE($4, publication_date),
					description = COALESCE($5, description),
					updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+bookColumns,
			id, req.Title, req.Author, req.PublicationDate, req.Description,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}

	return b, nil
}
