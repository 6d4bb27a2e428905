package book

import "bookledger/model"

type CreateBookReq struct {
	Title           string   `json:"title" validate:"required"`
	Author          string   `json:"author" validate:"required"`
	Genre           *string  `json:"genre,omitempty"`
	PublicationYear *int     `json:"publication_year,omitempty" validate:"omitempty,gte=0"`
	PageCount       *int     `json:"page_count,omitempty" validate:"omitempty,gte=0"`
	AverageRating   *float64 `json:"average_rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	RatingsCount    *int64   `json:"ratings_count,omitempty" validate:"omitempty,gte=0"`
	PriceUSD        *float64 `json:"price_usd,omitempty" validate:"omitempty,gte=0"`
	Publisher       *string  `json:"publisher,omitempty"`
	Language        *string  `json:"language,omitempty"`
	Format          *string  `json:"format,omitempty"`
	InPrint         *bool    `json:"in_print,omitempty"`
	SalesMillions   *float64 `json:"sales_millions,omitempty" validate:"omitempty,gte=0"`
}

func (r CreateBookReq) toModel() model.Book {
	return model.Book{
		Title:           r.Title,
		Author:          r.Author,
		Genre:           r.Genre,
		PublicationYear: r.PublicationYear,
		PageCount:       r.PageCount,
		AverageRating:   r.AverageRating,
		RatingsCount:    r.RatingsCount,
		PriceUSD:        r.PriceUSD,
		Publisher:       r.Publisher,
		Language:        r.Language,
		Format:          r.Format,
		InPrint:         r.InPrint,
		SalesMillions:   r.SalesMillions,
	}
}

type GenerateReq struct {
	Count int `json:"count" validate:"required,gt=0,lte=1000"`
}
