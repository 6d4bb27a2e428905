// model/checkout.go
package model

import "time"

// CheckoutRecord is one ledger entry. Entries are appended on check-out,
// closed in place on check-in and never deleted.
type CheckoutRecord struct {
	ID         string     `json:"checkout_id"`
	BookID     string     `json:"book_id"`
	CheckoutAt time.Time  `json:"checkout_date"`
	DueAt      *time.Time `json:"due_date,omitempty"`
	ReturnedAt *time.Time `json:"return_date,omitempty"`
	Returned   bool       `json:"returned"`
}
