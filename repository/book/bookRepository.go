package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookledger/model"
	"bookledger/util/database"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateID is returned when an insert collides on book_id
// (only possible with caller-supplied IDs, e.g. seed data).
var ErrDuplicateID = errors.New("duplicate book id")

type Repo interface {
	All(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id string) (*model.Book, error)
	FindByTitle(ctx context.Context, title string) ([]model.Book, error)
	Insert(ctx context.Context, b *model.Book) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, changes model.BookChanges) (bool, error)

	// Transaction-scoped; tx is the caller's open transaction.
	GetForUpdate(ctx context.Context, tx database.DBTX, id string) (*model.Book, error)
	SetAvailability(ctx context.Context, tx database.DBTX, id string, available bool, lastCheckout *time.Time) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookCols = `book_id, title, author, genre, publication_year, page_count,
	average_rating, ratings_count, price_usd, publisher, language, format,
	in_print, sales_millions, last_checkout, available`

func scanBook(row interface{ Scan(...any) error }) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Genre, &b.PublicationYear, &b.PageCount,
		&b.AverageRating, &b.RatingsCount, &b.PriceUSD, &b.Publisher, &b.Language,
		&b.Format, &b.InPrint, &b.SalesMillions, &b.LastCheckout, &b.Available,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) All(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT ` + bookCols + `
		FROM books
		ORDER BY title, book_id`
	return r.queryBooks(ctx, q)
}

func (r *repo) Get(ctx context.Context, id string) (*model.Book, error) {
	const q = `
		SELECT ` + bookCols + `
		FROM books
		WHERE book_id = $1`
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) FindByTitle(ctx context.Context, title string) ([]model.Book, error) {
	const q = `
		SELECT ` + bookCols + `
		FROM books
		WHERE title = $1
		ORDER BY book_id`
	return r.queryBooks(ctx, q, title)
}

func (r *repo) Insert(ctx context.Context, b *model.Book) (string, error) {
	const q = `
		INSERT INTO books (` + bookCols + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING book_id`
	var id string
	err := r.db.QueryRowContext(ctx, q,
		b.ID, b.Title, b.Author, b.Genre, b.PublicationYear, b.PageCount,
		b.AverageRating, b.RatingsCount, b.PriceUSD, b.Publisher, b.Language,
		b.Format, b.InPrint, b.SalesMillions, b.LastCheckout, b.Available,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", ErrDuplicateID
		}
		return "", err
	}
	return id, nil
}

func (r *repo) Delete(ctx context.Context, id string) (bool, error) {
	const q = `
		DELETE FROM books
		WHERE book_id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

// Update applies only the non-nil fields of changes. Returns false when
// the book does not exist.
func (r *repo) Update(ctx context.Context, id string, changes model.BookChanges) (bool, error) {
	sets := make([]string, 0, 11)
	args := make([]any, 0, 12)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if changes.Genre != nil {
		add("genre", *changes.Genre)
	}
	if changes.PublicationYear != nil {
		add("publication_year", *changes.PublicationYear)
	}
	if changes.PageCount != nil {
		add("page_count", *changes.PageCount)
	}
	if changes.AverageRating != nil {
		add("average_rating", *changes.AverageRating)
	}
	if changes.RatingsCount != nil {
		add("ratings_count", *changes.RatingsCount)
	}
	if changes.PriceUSD != nil {
		add("price_usd", *changes.PriceUSD)
	}
	if changes.Publisher != nil {
		add("publisher", *changes.Publisher)
	}
	if changes.Language != nil {
		add("language", *changes.Language)
	}
	if changes.Format != nil {
		add("format", *changes.Format)
	}
	if changes.InPrint != nil {
		add("in_print", *changes.InPrint)
	}
	if changes.SalesMillions != nil {
		add("sales_millions", *changes.SalesMillions)
	}
	if len(sets) == 0 {
		return false, errors.New("no fields to update")
	}

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE books SET %s WHERE book_id = $%d`,
		strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx database.DBTX, id string) (*model.Book, error) {
	// Row lock serializes concurrent lifecycle calls on the same book.
	const q = `
		SELECT ` + bookCols + `
		FROM books
		WHERE book_id = $1
		FOR UPDATE`
	return scanBook(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) SetAvailability(ctx context.Context, tx database.DBTX, id string, available bool, lastCheckout *time.Time) error {
	if lastCheckout != nil {
		const q = `
			UPDATE books
			SET available = $2,
				last_checkout = $3
			WHERE book_id = $1`
		_, err := tx.ExecContext(ctx, q, id, available, *lastCheckout)
		return err
	}
	const q = `
		UPDATE books
		SET available = $2
		WHERE book_id = $1`
	_, err := tx.ExecContext(ctx, q, id, available)
	return err
}

func (r *repo) queryBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
