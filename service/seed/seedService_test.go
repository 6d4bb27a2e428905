// service/seed/seed_service_test.go
package seedsvc_test

import (
	"context"
	"testing"

	"bookledger/model"
	seedsvc "bookledger/service/seed"

	"github.com/stretchr/testify/require"
)

type sink struct {
	books []model.Book
	recs  []model.CheckoutRecord
}

func (s *sink) Add(ctx context.Context, b model.Book) (string, error) {
	s.books = append(s.books, b)
	return b.ID, nil
}

func (s *sink) AddSeedRecords(ctx context.Context, recs []model.CheckoutRecord) error {
	s.recs = append(s.recs, recs...)
	return nil
}

func TestGenerate_KeepsLedgerInvariant(t *testing.T) {
	out := &sink{}
	res, err := seedsvc.New(out, out).Generate(context.Background(), 25)
	require.NoError(t, err)
	require.Equal(t, 25, res.Books)
	require.Len(t, out.books, 25)
	require.Len(t, out.recs, res.Records)

	ids := make(map[string]bool, len(out.books))
	for _, b := range out.books {
		require.NotEmpty(t, b.Title)
		require.NotEmpty(t, b.Author)
		require.True(t, b.Available, "seeded books must stay available")
		ids[b.ID] = true
	}

	// every record is closed and references a seeded book
	for _, r := range out.recs {
		require.True(t, ids[r.BookID], "record references unknown book %s", r.BookID)
		require.True(t, r.Returned)
		require.NotNil(t, r.ReturnedAt)
		require.True(t, r.ReturnedAt.After(r.CheckoutAt))
	}
}

func TestGenerate_Zero(t *testing.T) {
	out := &sink{}
	res, err := seedsvc.New(out, out).Generate(context.Background(), 0)
	require.NoError(t, err)
	require.Zero(t, res.Books)
	require.Zero(t, res.Records)
}
