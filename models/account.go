package models

import (
	"time"
)

// Account represents a bean balance keyed by a lowercased IRC nick
type Account struct {
	Nick      string    `db:"nick"`
	Beans     int64     `db:"beans"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TransferResult represents the outcome of a completed transfer
type TransferResult struct {
	From        string
	To          string
	Amount      int64
	FromBalance int64
	ToBalance   int64
}
