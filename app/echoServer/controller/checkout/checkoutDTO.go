package checkout

import (
	"time"

	"bookledger/model"
)

type SeedRecordReq struct {
	BookID     string     `json:"book_id" validate:"required,uuid4"`
	CheckoutAt time.Time  `json:"checkout_date" validate:"required"`
	DueAt      *time.Time `json:"due_date,omitempty"`
	ReturnedAt *time.Time `json:"return_date,omitempty"`
	Returned   bool       `json:"returned"`
}

type SeedRecordsReq struct {
	Records []SeedRecordReq `json:"records" validate:"required,min=1,dive"`
}

func (r SeedRecordsReq) toModels() []model.CheckoutRecord {
	out := make([]model.CheckoutRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		out = append(out, model.CheckoutRecord{
			BookID:     rec.BookID,
			CheckoutAt: rec.CheckoutAt,
			DueAt:      rec.DueAt,
			ReturnedAt: rec.ReturnedAt,
			Returned:   rec.Returned,
		})
	}
	return out
}
