package checkout

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookledger/model"
	"bookledger/util/database"

	"github.com/google/uuid"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrAlreadyCheckedOut ErrCode = "ALREADY_CHECKED_OUT"
	ErrAlreadyAvailable  ErrCode = "ALREADY_AVAILABLE"
	ErrDanglingState     ErrCode = "DANGLING_STATE"
	ErrValidation        ErrCode = "VALIDATION"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Books is the slice of the book store the lifecycle needs.
type Books interface {
	GetForUpdate(ctx context.Context, tx database.DBTX, id string) (*model.Book, error)
	SetAvailability(ctx context.Context, tx database.DBTX, id string, available bool, lastCheckout *time.Time) error
}

// Ledger is the slice of the checkout-history store the lifecycle needs.
type Ledger interface {
	Append(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error)
	OpenForBook(ctx context.Context, tx database.DBTX, bookID string) (*model.CheckoutRecord, error)
	Close(ctx context.Context, tx database.DBTX, recordID string, returnedAt time.Time) error
	AppendBatch(ctx context.Context, tx database.DBTX, recs []model.CheckoutRecord) error
	ByBook(ctx context.Context, bookID string) ([]model.CheckoutRecord, error)
	All(ctx context.Context) ([]model.CheckoutRecord, error)
}

type Service interface {
	// CheckOut: Available -> CheckedOut, plus one open ledger record.
	CheckOut(ctx context.Context, bookID string) (*model.CheckoutRecord, error)

	// CheckIn: CheckedOut -> Available, closes the open ledger record.
	CheckIn(ctx context.Context, bookID string) (*model.CheckoutRecord, error)

	HistoryForBook(ctx context.Context, bookID string) ([]model.CheckoutRecord, error)
	HistoryAll(ctx context.Context) ([]model.CheckoutRecord, error)

	// AddSeedRecords bulk-appends pre-built records, bypassing the state
	// machine. Callers own the consistency of what they seed.
	AddSeedRecords(ctx context.Context, recs []model.CheckoutRecord) error
}

// ----- Service implementation -----

type service struct {
	txr    database.TxRunner
	books  Books
	ledger Ledger
}

func New(txr database.TxRunner, books Books, ledger Ledger) Service {
	return &service{txr: txr, books: books, ledger: ledger}
}

// CheckOut flips the book to unavailable and appends the open record in one
// transaction. Either both land or neither does.
func (s *service) CheckOut(ctx context.Context, bookID string) (*model.CheckoutRecord, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return nil, makeErr(ErrValidation)
	}

	var rec *model.CheckoutRecord
	err := s.txr.RunInTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		b, err := s.books.GetForUpdate(ctx, tx, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !b.Available {
			return makeErr(ErrAlreadyCheckedOut)
		}

		if err = s.books.SetAvailability(ctx, tx, bookID, false, nil); err != nil {
			return err
		}

		r := model.CheckoutRecord{
			ID:         uuid.NewString(),
			BookID:     bookID,
			CheckoutAt: time.Now().UTC(),
			Returned:   false,
		}
		if _, err = s.ledger.Append(ctx, tx, &r); err != nil {
			return err
		}
		rec = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CheckIn closes the open record and flips the book back to available.
// A book marked unavailable with no open record is corrupt data; that is
// surfaced as DANGLING_STATE, never patched over.
func (s *service) CheckIn(ctx context.Context, bookID string) (*model.CheckoutRecord, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return nil, makeErr(ErrValidation)
	}

	var rec *model.CheckoutRecord
	err := s.txr.RunInTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		b, err := s.books.GetForUpdate(ctx, tx, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if err != nil {
			return err
		}
		if b.Available {
			return makeErr(ErrAlreadyAvailable)
		}

		open, err := s.ledger.OpenForBook(ctx, tx, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrDanglingState)
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err = s.ledger.Close(ctx, tx, open.ID, now); err != nil {
			return err
		}
		if err = s.books.SetAvailability(ctx, tx, bookID, true, &now); err != nil {
			return err
		}

		open.Returned = true
		open.ReturnedAt = &now
		rec = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) HistoryForBook(ctx context.Context, bookID string) ([]model.CheckoutRecord, error) {
	if _, err := uuid.Parse(bookID); err != nil {
		return nil, makeErr(ErrValidation)
	}
	return s.ledger.ByBook(ctx, bookID)
}

func (s *service) HistoryAll(ctx context.Context) ([]model.CheckoutRecord, error) {
	return s.ledger.All(ctx)
}

func (s *service) AddSeedRecords(ctx context.Context, recs []model.CheckoutRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = uuid.NewString()
		}
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		return s.ledger.AppendBatch(ctx, tx, recs)
	})
}
