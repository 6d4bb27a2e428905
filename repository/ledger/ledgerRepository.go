package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookledger/model"
	"bookledger/util/database"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownBook is returned when an append references a book_id that is
// not in the books table (FK violation).
var ErrUnknownBook = errors.New("unknown book id")

type Repo interface {
	// Transaction-scoped; tx is the caller's open transaction.
	Append(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error)
	OpenForBook(ctx context.Context, tx database.DBTX, bookID string) (*model.CheckoutRecord, error)
	Close(ctx context.Context, tx database.DBTX, recordID string, returnedAt time.Time) error
	AppendBatch(ctx context.Context, tx database.DBTX, recs []model.CheckoutRecord) error

	ByBook(ctx context.Context, bookID string) ([]model.CheckoutRecord, error)
	All(ctx context.Context) ([]model.CheckoutRecord, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const recordCols = `checkout_id, book_id, checkout_date, due_date, return_date, returned`

func (r *repo) Append(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error) {
	const q = `
		INSERT INTO checkout_history (` + recordCols + `)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING checkout_id`
	var id string
	err := tx.QueryRowContext(ctx, q,
		rec.ID, rec.BookID, rec.CheckoutAt, rec.DueAt, rec.ReturnedAt, rec.Returned,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return "", ErrUnknownBook
		}
		return "", err
	}
	return id, nil
}

// OpenForBook locks and returns the single record with returned = false for
// the book. sql.ErrNoRows when the book has no open record.
func (r *repo) OpenForBook(ctx context.Context, tx database.DBTX, bookID string) (*model.CheckoutRecord, error) {
	const q = `
		SELECT ` + recordCols + `
		FROM checkout_history
		WHERE book_id = $1
		AND returned = FALSE
		ORDER BY checkout_date DESC
		LIMIT 1
		FOR UPDATE`
	return scanRecord(tx.QueryRowContext(ctx, q, bookID))
}

func (r *repo) Close(ctx context.Context, tx database.DBTX, recordID string, returnedAt time.Time) error {
	const q = `
		UPDATE checkout_history
		SET returned = TRUE,
			return_date = $2
		WHERE checkout_id = $1
		AND returned = FALSE`
	res, err := tx.ExecContext(ctx, q, recordID, returnedAt)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) AppendBatch(ctx context.Context, tx database.DBTX, recs []model.CheckoutRecord) error {
	const q = `
		INSERT INTO checkout_history (` + recordCols + `)
		VALUES ($1,$2,$3,$4,$5,$6)`
	for i := range recs {
		rec := &recs[i]
		if _, err := tx.ExecContext(ctx, q,
			rec.ID, rec.BookID, rec.CheckoutAt, rec.DueAt, rec.ReturnedAt, rec.Returned,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return ErrUnknownBook
			}
			return err
		}
	}
	return nil
}

func (r *repo) ByBook(ctx context.Context, bookID string) ([]model.CheckoutRecord, error) {
	const q = `
		SELECT ` + recordCols + `
		FROM checkout_history
		WHERE book_id = $1
		ORDER BY checkout_date ASC`
	return r.queryRecords(ctx, q, bookID)
}

func (r *repo) All(ctx context.Context) ([]model.CheckoutRecord, error) {
	const q = `
		SELECT ` + recordCols + `
		FROM checkout_history
		ORDER BY checkout_date ASC, checkout_id`
	return r.queryRecords(ctx, q)
}

func scanRecord(row interface{ Scan(...any) error }) (*model.CheckoutRecord, error) {
	var rec model.CheckoutRecord
	err := row.Scan(&rec.ID, &rec.BookID, &rec.CheckoutAt, &rec.DueAt, &rec.ReturnedAt, &rec.Returned)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repo) queryRecords(ctx context.Context, q string, args ...any) ([]model.CheckoutRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CheckoutRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
