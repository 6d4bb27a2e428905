package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookledger/model"
	bookrepo "bookledger/repository/book"

	"github.com/google/uuid"
)

type ErrCode string

const (
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrValidation ErrCode = "VALIDATION"
	ErrDuplicate  ErrCode = "DUPLICATE_ID"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	All(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id string) (*model.Book, error)
	FindByTitle(ctx context.Context, title string) ([]model.Book, error)
	Insert(ctx context.Context, b *model.Book) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, changes model.BookChanges) (bool, error)
}

type Service interface {
	// All returns the inventory snapshot analytics runs over.
	All(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id string) (*model.Book, error)
	FindByTitle(ctx context.Context, title string) ([]model.Book, error)
	Add(ctx context.Context, b model.Book) (string, error)
	Remove(ctx context.Context, id string) error

	// Update applies a changeset and returns the applied field names.
	// Any negative numeric field rejects the whole changeset.
	Update(ctx context.Context, id string, changes model.BookChanges) ([]string, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) All(ctx context.Context) ([]model.Book, error) { return s.r.All(ctx) }

func (s *service) Get(ctx context.Context, id string) (*model.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, codedError{code: ErrValidation, msg: "malformed book id"}
	}
	b, err := s.r.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, codedError{code: ErrNotFound}
	}
	return b, err
}

func (s *service) FindByTitle(ctx context.Context, title string) ([]model.Book, error) {
	if strings.TrimSpace(title) == "" {
		return nil, codedError{code: ErrValidation, msg: "empty title query"}
	}
	return s.r.FindByTitle(ctx, title)
}

func (s *service) Add(ctx context.Context, b model.Book) (string, error) {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return "", codedError{code: ErrValidation, msg: "title and author are required"}
	}
	if bad := invalidFields(model.BookChanges{
		PublicationYear: b.PublicationYear,
		PageCount:       b.PageCount,
		AverageRating:   b.AverageRating,
		RatingsCount:    b.RatingsCount,
		PriceUSD:        b.PriceUSD,
		SalesMillions:   b.SalesMillions,
	}); len(bad) > 0 {
		return "", codedError{code: ErrValidation, msg: "negative values: " + strings.Join(bad, ", ")}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	} else if _, err := uuid.Parse(b.ID); err != nil {
		return "", codedError{code: ErrValidation, msg: "malformed book id"}
	}
	b.Available = true

	id, err := s.r.Insert(ctx, &b)
	if errors.Is(err, bookrepo.ErrDuplicateID) {
		return "", codedError{code: ErrDuplicate}
	}
	return id, err
}

func (s *service) Remove(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return codedError{code: ErrValidation, msg: "malformed book id"}
	}
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return codedError{code: ErrNotFound}
	}
	return nil
}

func (s *service) Update(ctx context.Context, id string, changes model.BookChanges) ([]string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, codedError{code: ErrValidation, msg: "malformed book id"}
	}
	if changes.IsEmpty() {
		return nil, codedError{code: ErrValidation, msg: "empty changeset"}
	}
	if bad := invalidFields(changes); len(bad) > 0 {
		return nil, codedError{code: ErrValidation, msg: "negative values: " + strings.Join(bad, ", ")}
	}

	ok, err := s.r.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, codedError{code: ErrNotFound}
	}
	return appliedFields(changes), nil
}

// invalidFields names the numeric fields that carry a negative value.
// The changeset is all-or-nothing: one bad field rejects it whole.
func invalidFields(c model.BookChanges) []string {
	var bad []string
	if c.PublicationYear != nil && *c.PublicationYear < 0 {
		bad = append(bad, "publication_year")
	}
	if c.PageCount != nil && *c.PageCount < 0 {
		bad = append(bad, "page_count")
	}
	if c.AverageRating != nil && *c.AverageRating < 0 {
		bad = append(bad, "average_rating")
	}
	if c.RatingsCount != nil && *c.RatingsCount < 0 {
		bad = append(bad, "ratings_count")
	}
	if c.PriceUSD != nil && *c.PriceUSD < 0 {
		bad = append(bad, "price_usd")
	}
	if c.SalesMillions != nil && *c.SalesMillions < 0 {
		bad = append(bad, "sales_millions")
	}
	return bad
}

func appliedFields(c model.BookChanges) []string {
	var out []string
	if c.Genre != nil {
		out = append(out, "genre")
	}
	if c.PublicationYear != nil {
		out = append(out, "publication_year")
	}
	if c.PageCount != nil {
		out = append(out, "page_count")
	}
	if c.AverageRating != nil {
		out = append(out, "average_rating")
	}
	if c.RatingsCount != nil {
		out = append(out, "ratings_count")
	}
	if c.PriceUSD != nil {
		out = append(out, "price_usd")
	}
	if c.Publisher != nil {
		out = append(out, "publisher")
	}
	if c.Language != nil {
		out = append(out, "language")
	}
	if c.Format != nil {
		out = append(out, "format")
	}
	if c.InPrint != nil {
		out = append(out, "in_print")
	}
	if c.SalesMillions != nil {
		out = append(out, "sales_millions")
	}
	return out
}
