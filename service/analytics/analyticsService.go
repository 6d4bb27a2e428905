// Package analytics computes aggregate statistics over a snapshot of books.
//
// Every function here is pure: it reads the slice it is given, mutates
// nothing, touches no storage. Callers fetch the snapshot (bookrepo.All)
// and pass it in, so these are safe under any amount of concurrency.
package analytics

import (
	"errors"
	"math"
	"sort"

	"bookledger/model"
)

// ErrNoData means the requested aggregate has no input to work with.
// Distinct from zero: an average of nothing is not 0.
var ErrNoData = errors.New("no data")

// AveragePrice returns the mean price across books that carry one.
// NaN when no book has a price; callers must treat NaN as "no data".
func AveragePrice(books []model.Book) float64 {
	var sum float64
	var n int
	for i := range books {
		if p := books[i].PriceUSD; p != nil {
			sum += *p
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// TopRated returns up to limit books with at least minRatings ratings,
// best-rated first. Books missing a rating or a ratings count never
// qualify. The sort is stable: ties keep their input order.
func TopRated(books []model.Book, minRatings int64, limit int) []model.Book {
	candidates := make([]model.Book, 0, len(books))
	for i := range books {
		b := books[i]
		if b.AverageRating == nil || b.RatingsCount == nil {
			continue
		}
		if *b.RatingsCount < minRatings {
			continue
		}
		candidates = append(candidates, b)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return *candidates[i].AverageRating > *candidates[j].AverageRating
	})
	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// ValueScores maps book ID to rating * ln(1+ratings_count) / price.
// Books with a nil or zero price, or missing rating data, are left out
// entirely. A duplicated ID keeps the last occurrence's score.
func ValueScores(books []model.Book) map[string]float64 {
	out := make(map[string]float64, len(books))
	for i := range books {
		b := books[i]
		if b.AverageRating == nil || b.RatingsCount == nil || b.PriceUSD == nil || *b.PriceUSD == 0 {
			continue
		}
		out[b.ID] = *b.AverageRating * math.Log1p(float64(*b.RatingsCount)) / *b.PriceUSD
	}
	return out
}

// MeanPriceByGenre returns the arithmetic mean of known prices per genre.
// Books without a genre are bucketed under the empty string. Genres whose
// books all lack a price are omitted.
func MeanPriceByGenre(books []model.Book) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range books {
		b := books[i]
		if b.PriceUSD == nil {
			continue
		}
		genre := ""
		if b.Genre != nil {
			genre = *b.Genre
		}
		sums[genre] += *b.PriceUSD
		counts[genre]++
	}
	out := make(map[string]float64, len(sums))
	for g, sum := range sums {
		out[g] = sum / float64(counts[g])
	}
	return out
}

// MostPopularGenre returns the genre checked out most often in the given
// year, judged by each book's last checkout date. Ties go to the
// lexicographically smallest genre. ErrNoData when nothing was checked
// out that year.
func MostPopularGenre(books []model.Book, year int) (string, error) {
	counts := make(map[string]int)
	for i := range books {
		b := books[i]
		if b.LastCheckout == nil || b.LastCheckout.Year() != year {
			continue
		}
		genre := ""
		if b.Genre != nil {
			genre = *b.Genre
		}
		counts[genre]++
	}
	if len(counts) == 0 {
		return "", ErrNoData
	}

	best := ""
	bestCount := -1
	for g, n := range counts {
		if n > bestCount || (n == bestCount && g < best) {
			best, bestCount = g, n
		}
	}
	return best, nil
}
