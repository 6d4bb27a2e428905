package seedsvc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bookledger/model"

	"github.com/google/uuid"
)

// Books is the slice of the inventory service seeding needs.
type Books interface {
	Add(ctx context.Context, b model.Book) (string, error)
}

// Checkouts is the slice of the lifecycle service seeding needs.
type Checkouts interface {
	AddSeedRecords(ctx context.Context, recs []model.CheckoutRecord) error
}

type Result struct {
	Books   int `json:"books"`
	Records int `json:"records"`
}

type Service interface {
	// Generate inserts n randomized books plus a closed checkout history
	// for each. Only closed records are seeded, so every seeded book
	// stays available and the ledger invariant holds.
	Generate(ctx context.Context, n int) (*Result, error)
}

type service struct {
	books     Books
	checkouts Checkouts
	rnd       *rand.Rand
}

func New(books Books, checkouts Checkouts) Service {
	return &service{
		books:     books,
		checkouts: checkouts,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var (
	genres     = []string{"scifi", "fantasy", "mystery", "romance", "history", "poetry"}
	publishers = []string{"Orbit", "Tor", "Penguin", "Vintage", "Ace"}
	languages  = []string{"English", "Spanish", "Japanese", "French"}
	formats    = []string{"hardcover", "paperback", "ebook"}
	authors    = []string{
		"Ursula K. Le Guin", "Frank Herbert", "Agatha Christie",
		"Octavia Butler", "Italo Calvino", "Toni Morrison",
	}
)

func (s *service) Generate(ctx context.Context, n int) (*Result, error) {
	var res Result
	for i := 0; i < n; i++ {
		b := s.randomBook(i)
		recs := s.randomHistory(&b)

		id, err := s.books.Add(ctx, b)
		if err != nil {
			return nil, err
		}
		for j := range recs {
			recs[j].BookID = id
		}
		if err := s.checkouts.AddSeedRecords(ctx, recs); err != nil {
			return nil, err
		}
		res.Books++
		res.Records += len(recs)
	}
	return &res, nil
}

func (s *service) randomBook(i int) model.Book {
	genre := genres[s.rnd.Intn(len(genres))]
	year := 1950 + s.rnd.Intn(76)
	pages := 90 + s.rnd.Intn(900)
	rating := float64(s.rnd.Intn(31)+20) / 10 // 2.0 .. 5.0
	ratings := int64(s.rnd.Intn(1000))
	price := float64(s.rnd.Intn(4500)+500) / 100
	sales := float64(s.rnd.Intn(120)) / 10
	inPrint := s.rnd.Intn(4) > 0

	return model.Book{
		ID:              uuid.NewString(),
		Title:           fmt.Sprintf("Generated Volume %d", i+1),
		Author:          authors[s.rnd.Intn(len(authors))],
		Genre:           &genre,
		PublicationYear: &year,
		PageCount:       &pages,
		AverageRating:   &rating,
		RatingsCount:    &ratings,
		PriceUSD:        &price,
		Publisher:       &publishers[s.rnd.Intn(len(publishers))],
		Language:        &languages[s.rnd.Intn(len(languages))],
		Format:          &formats[s.rnd.Intn(len(formats))],
		InPrint:         &inPrint,
		SalesMillions:   &sales,
		Available:       true,
	}
}

// randomHistory builds up to three closed loans, newest last, and stamps
// the book's last checkout to the newest return date.
func (s *service) randomHistory(b *model.Book) []model.CheckoutRecord {
	n := s.rnd.Intn(4)
	recs := make([]model.CheckoutRecord, 0, n)
	cursor := time.Now().UTC().AddDate(0, -n, 0)

	for i := 0; i < n; i++ {
		out := cursor.Add(time.Duration(s.rnd.Intn(96)) * time.Hour)
		due := out.AddDate(0, 0, 14)
		ret := out.Add(time.Duration(s.rnd.Intn(13*24)+1) * time.Hour)
		recs = append(recs, model.CheckoutRecord{
			ID:         uuid.NewString(),
			BookID:     b.ID,
			CheckoutAt: out,
			DueAt:      &due,
			ReturnedAt: &ret,
			Returned:   true,
		})
		b.LastCheckout = &ret
		cursor = cursor.AddDate(0, 1, 0)
	}
	return recs
}
