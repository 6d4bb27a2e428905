// service/checkout/checkout_service_test.go
package checkout_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"bookledger/model"
	"bookledger/service/checkout"
	"bookledger/util/database"

	"github.com/google/uuid"
)

// fakeRunner executes fn directly and records whether it "committed" or
// "rolled back" (fn error), mirroring the real runner's contract.
type fakeRunner struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
	if err := fn(ctx, nil); err != nil {
		f.rolledBack = true
		return err
	}
	if f.commitErr != nil {
		f.rolledBack = true
		return f.commitErr
	}
	f.committed = true
	return nil
}

type booksMock struct {
	getForUpdateFn    func(ctx context.Context, tx database.DBTX, id string) (*model.Book, error)
	setAvailabilityFn func(ctx context.Context, tx database.DBTX, id string, available bool, lastCheckout *time.Time) error
}

func (m *booksMock) GetForUpdate(ctx context.Context, tx database.DBTX, id string) (*model.Book, error) {
	return m.getForUpdateFn(ctx, tx, id)
}
func (m *booksMock) SetAvailability(ctx context.Context, tx database.DBTX, id string, available bool, lastCheckout *time.Time) error {
	if m.setAvailabilityFn == nil {
		return nil
	}
	return m.setAvailabilityFn(ctx, tx, id, available, lastCheckout)
}

type ledgerMock struct {
	appendFn      func(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error)
	openForBookFn func(ctx context.Context, tx database.DBTX, bookID string) (*model.CheckoutRecord, error)
	closeFn       func(ctx context.Context, tx database.DBTX, recordID string, returnedAt time.Time) error
	appendBatchFn func(ctx context.Context, tx database.DBTX, recs []model.CheckoutRecord) error
	byBookFn      func(ctx context.Context, bookID string) ([]model.CheckoutRecord, error)
	allFn         func(ctx context.Context) ([]model.CheckoutRecord, error)
}

func (m *ledgerMock) Append(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error) {
	if m.appendFn == nil {
		return rec.ID, nil
	}
	return m.appendFn(ctx, tx, rec)
}
func (m *ledgerMock) OpenForBook(ctx context.Context, tx database.DBTX, bookID string) (*model.CheckoutRecord, error) {
	return m.openForBookFn(ctx, tx, bookID)
}
func (m *ledgerMock) Close(ctx context.Context, tx database.DBTX, recordID string, returnedAt time.Time) error {
	if m.closeFn == nil {
		return nil
	}
	return m.closeFn(ctx, tx, recordID, returnedAt)
}
func (m *ledgerMock) AppendBatch(ctx context.Context, tx database.DBTX, recs []model.CheckoutRecord) error {
	return m.appendBatchFn(ctx, tx, recs)
}
func (m *ledgerMock) ByBook(ctx context.Context, bookID string) ([]model.CheckoutRecord, error) {
	return m.byBookFn(ctx, bookID)
}
func (m *ledgerMock) All(ctx context.Context) ([]model.CheckoutRecord, error) {
	return m.allFn(ctx)
}

func availableBook(id string) *model.Book {
	return &model.Book{ID: id, Title: "Dune", Author: "Frank Herbert", Available: true}
}

func TestCheckOut_Success(t *testing.T) {
	id := uuid.NewString()
	run := &fakeRunner{}
	var gotAvailable *bool
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			if bid != id {
				t.Fatalf("locked wrong book %s", bid)
			}
			return availableBook(id), nil
		},
		setAvailabilityFn: func(ctx context.Context, tx database.DBTX, bid string, available bool, last *time.Time) error {
			gotAvailable = &available
			if last != nil {
				t.Fatal("check-out must not touch last_checkout")
			}
			return nil
		},
	}
	var appended *model.CheckoutRecord
	ledger := &ledgerMock{
		appendFn: func(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error) {
			appended = rec
			return rec.ID, nil
		},
	}

	rec, err := checkout.New(run, books, ledger).CheckOut(context.Background(), id)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if !run.committed {
		t.Fatal("transaction not committed")
	}
	if gotAvailable == nil || *gotAvailable {
		t.Fatal("book not marked unavailable")
	}
	if appended == nil || appended.BookID != id || appended.Returned {
		t.Fatalf("bad ledger record: %+v", appended)
	}
	if rec.ID == "" || rec.CheckoutAt.IsZero() {
		t.Fatalf("record missing identity/timestamp: %+v", rec)
	}
}

func TestCheckOut_AlreadyCheckedOut(t *testing.T) {
	id := uuid.NewString()
	run := &fakeRunner{}
	b := availableBook(id)
	b.Available = false
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			return b, nil
		},
		setAvailabilityFn: func(ctx context.Context, tx database.DBTX, bid string, available bool, last *time.Time) error {
			t.Fatal("must not mutate an already checked out book")
			return nil
		},
	}
	ledger := &ledgerMock{
		appendFn: func(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error) {
			t.Fatal("must not append a record")
			return "", nil
		},
	}

	_, err := checkout.New(run, books, ledger).CheckOut(context.Background(), id)
	if checkout.Code(err) != checkout.ErrAlreadyCheckedOut {
		t.Fatalf("got %v; want ALREADY_CHECKED_OUT", err)
	}
	if !run.rolledBack {
		t.Fatal("transaction not rolled back")
	}
}

func TestCheckOut_NotFound(t *testing.T) {
	run := &fakeRunner{}
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	_, err := checkout.New(run, books, &ledgerMock{}).CheckOut(context.Background(), uuid.NewString())
	if checkout.Code(err) != checkout.ErrNotFound {
		t.Fatalf("got %v; want NOT_FOUND", err)
	}
}

func TestCheckOut_AppendFailureRollsBack(t *testing.T) {
	id := uuid.NewString()
	run := &fakeRunner{}
	staged := false
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			return availableBook(id), nil
		},
		setAvailabilityFn: func(ctx context.Context, tx database.DBTX, bid string, available bool, last *time.Time) error {
			staged = true
			return nil
		},
	}
	boom := errors.New("disk full")
	ledger := &ledgerMock{
		appendFn: func(ctx context.Context, tx database.DBTX, rec *model.CheckoutRecord) (string, error) {
			return "", boom
		},
	}

	_, err := checkout.New(run, books, ledger).CheckOut(context.Background(), id)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v; want append failure", err)
	}
	if !staged {
		t.Fatal("expected the book mutation to have been staged before the append")
	}
	if !run.rolledBack || run.committed {
		t.Fatal("staged mutation must be rolled back with the failed append")
	}
}

func TestCheckOut_CommitFailurePropagates(t *testing.T) {
	id := uuid.NewString()
	run := &fakeRunner{commitErr: errors.New("serialization failure")}
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			return availableBook(id), nil
		},
	}

	_, err := checkout.New(run, books, &ledgerMock{}).CheckOut(context.Background(), id)
	if !errors.Is(err, run.commitErr) {
		t.Fatalf("got %v; commit failures must surface to the caller", err)
	}
	if run.committed {
		t.Fatal("nothing may be reported committed")
	}
}

func TestCheckIn_Roundtrip(t *testing.T) {
	id := uuid.NewString()
	openedAt := time.Now().UTC().Add(-time.Hour)
	open := &model.CheckoutRecord{ID: uuid.NewString(), BookID: id, CheckoutAt: openedAt}

	run := &fakeRunner{}
	var availAfter *bool
	var lastCheckout *time.Time
	b := availableBook(id)
	b.Available = false
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			return b, nil
		},
		setAvailabilityFn: func(ctx context.Context, tx database.DBTX, bid string, available bool, last *time.Time) error {
			availAfter = &available
			lastCheckout = last
			return nil
		},
	}
	closed := ""
	ledger := &ledgerMock{
		openForBookFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.CheckoutRecord, error) {
			return open, nil
		},
		closeFn: func(ctx context.Context, tx database.DBTX, recordID string, returnedAt time.Time) error {
			closed = recordID
			return nil
		},
	}

	rec, err := checkout.New(run, books, ledger).CheckIn(context.Background(), id)
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if closed != open.ID {
		t.Fatalf("closed record %q; want %q", closed, open.ID)
	}
	if availAfter == nil || !*availAfter {
		t.Fatal("book not marked available")
	}
	if lastCheckout == nil {
		t.Fatal("last_checkout not set on check-in")
	}
	if !rec.Returned || rec.ReturnedAt == nil || !rec.ReturnedAt.After(rec.CheckoutAt) {
		t.Fatalf("closed record malformed: %+v", rec)
	}
}

func TestCheckIn_AlreadyAvailable(t *testing.T) {
	id := uuid.NewString()
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			return availableBook(id), nil
		},
	}
	_, err := checkout.New(&fakeRunner{}, books, &ledgerMock{}).CheckIn(context.Background(), id)
	if checkout.Code(err) != checkout.ErrAlreadyAvailable {
		t.Fatalf("got %v; want ALREADY_AVAILABLE", err)
	}
}

func TestCheckIn_DanglingState(t *testing.T) {
	id := uuid.NewString()
	b := availableBook(id)
	b.Available = false
	run := &fakeRunner{}
	books := &booksMock{
		getForUpdateFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.Book, error) {
			return b, nil
		},
	}
	ledger := &ledgerMock{
		openForBookFn: func(ctx context.Context, tx database.DBTX, bid string) (*model.CheckoutRecord, error) {
			return nil, sql.ErrNoRows
		},
	}

	_, err := checkout.New(run, books, ledger).CheckIn(context.Background(), id)
	if checkout.Code(err) != checkout.ErrDanglingState {
		t.Fatalf("got %v; want DANGLING_STATE", err)
	}
	if !run.rolledBack {
		t.Fatal("dangling state must roll back, not half-heal")
	}
}

func TestLifecycle_RejectsMalformedID(t *testing.T) {
	svc := checkout.New(&fakeRunner{}, &booksMock{}, &ledgerMock{})
	for _, call := range []func() error{
		func() error { _, err := svc.CheckOut(context.Background(), "not-a-uuid"); return err },
		func() error { _, err := svc.CheckIn(context.Background(), "not-a-uuid"); return err },
		func() error { _, err := svc.HistoryForBook(context.Background(), "42"); return err },
	} {
		if checkout.Code(call()) != checkout.ErrValidation {
			t.Fatal("expected VALIDATION for malformed book id")
		}
	}
}

func TestHistoryForBook_Ordering(t *testing.T) {
	id := uuid.NewString()
	recs := []model.CheckoutRecord{
		{ID: uuid.NewString(), BookID: id, CheckoutAt: time.Now().Add(-48 * time.Hour), Returned: true},
		{ID: uuid.NewString(), BookID: id, CheckoutAt: time.Now().Add(-2 * time.Hour)},
	}
	ledger := &ledgerMock{
		byBookFn: func(ctx context.Context, bid string) ([]model.CheckoutRecord, error) {
			return recs, nil
		},
	}
	got, err := checkout.New(&fakeRunner{}, &booksMock{}, ledger).HistoryForBook(context.Background(), id)
	if err != nil || len(got) != 2 {
		t.Fatalf("got %d records, err=%v; want 2 nil", len(got), err)
	}
	if got[0].CheckoutAt.After(got[1].CheckoutAt) {
		t.Fatal("history must be ascending by checkout date")
	}
}

func TestAddSeedRecords(t *testing.T) {
	run := &fakeRunner{}
	var got []model.CheckoutRecord
	ledger := &ledgerMock{
		appendBatchFn: func(ctx context.Context, tx database.DBTX, recs []model.CheckoutRecord) error {
			got = recs
			return nil
		},
	}
	in := []model.CheckoutRecord{
		{BookID: uuid.NewString(), CheckoutAt: time.Now(), Returned: true},
		{ID: "keep-me", BookID: uuid.NewString(), CheckoutAt: time.Now()},
	}
	if err := checkout.New(run, &booksMock{}, ledger).AddSeedRecords(context.Background(), in); err != nil {
		t.Fatalf("AddSeedRecords: %v", err)
	}
	if len(got) != 2 || got[0].ID == "" || got[1].ID != "keep-me" {
		t.Fatalf("seed records not normalized: %+v", got)
	}
	if !run.committed {
		t.Fatal("seed batch must run in one committed transaction")
	}
}

func TestAddSeedRecords_Empty(t *testing.T) {
	run := &fakeRunner{}
	if err := checkout.New(run, &booksMock{}, &ledgerMock{}).AddSeedRecords(context.Background(), nil); err != nil {
		t.Fatalf("empty seed batch: %v", err)
	}
	if run.committed || run.rolledBack {
		t.Fatal("empty batch must not open a transaction")
	}
}
