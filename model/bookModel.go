// model/book.go
package model

import "time"

type Book struct {
	ID              string     `json:"book_id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Genre           *string    `json:"genre,omitempty"`
	PublicationYear *int       `json:"publication_year,omitempty"`
	PageCount       *int       `json:"page_count,omitempty"`
	AverageRating   *float64   `json:"average_rating,omitempty"`
	RatingsCount    *int64     `json:"ratings_count,omitempty"`
	PriceUSD        *float64   `json:"price_usd,omitempty"`
	Publisher       *string    `json:"publisher,omitempty"`
	Language        *string    `json:"language,omitempty"`
	Format          *string    `json:"format,omitempty"`
	InPrint         *bool      `json:"in_print,omitempty"`
	SalesMillions   *float64   `json:"sales_millions,omitempty"`
	LastCheckout    *time.Time `json:"last_checkout,omitempty"`
	Available       bool       `json:"available"`
}

// BookChanges is a partial update: nil means "leave the field alone".
// Only the fields listed here are mutable; identity, title and author are not.
type BookChanges struct {
	Genre           *string  `json:"genre,omitempty"`
	PublicationYear *int     `json:"publication_year,omitempty"`
	PageCount       *int     `json:"page_count,omitempty"`
	AverageRating   *float64 `json:"average_rating,omitempty"`
	RatingsCount    *int64   `json:"ratings_count,omitempty"`
	PriceUSD        *float64 `json:"price_usd,omitempty"`
	Publisher       *string  `json:"publisher,omitempty"`
	Language        *string  `json:"language,omitempty"`
	Format          *string  `json:"format,omitempty"`
	InPrint         *bool    `json:"in_print,omitempty"`
	SalesMillions   *float64 `json:"sales_millions,omitempty"`
}

// IsEmpty reports whether no field is set at all.
func (c BookChanges) IsEmpty() bool {
	return c.Genre == nil && c.PublicationYear == nil && c.PageCount == nil &&
		c.AverageRating == nil && c.RatingsCount == nil && c.PriceUSD == nil &&
		c.Publisher == nil && c.Language == nil && c.Format == nil &&
		c.InPrint == nil && c.SalesMillions == nil
}
