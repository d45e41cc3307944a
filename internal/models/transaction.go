package models

import (
	"time"
)

// Transaction is one ledger entry under an Account. The document ID is the
// source-assigned ExternalID, unique per owner. AccountName is a snapshot
// taken at insert time and is not re-synced. Category and CategorySource are
// owned by the categorization pipeline; sync never writes them.
type Transaction struct {
	TransactionID  string    `firestore:"transactionId" json:"transactionId"`
	AccountID      string    `firestore:"accountId" json:"accountId"`
	AccountName    string    `firestore:"accountName" json:"accountName"`
	Amount         float64   `firestore:"amount" json:"amount"`
	Currency       string    `firestore:"currency" json:"currency"`
	Posted         int64     `firestore:"posted" json:"posted"` // Unix millis
	TransactedAt   *int64    `firestore:"transactedAt" json:"transactedAt,omitempty"`
	Description    string    `firestore:"description" json:"description,omitempty"`
	Payee          string    `firestore:"payee" json:"payee,omitempty"`
	Memo           string    `firestore:"memo" json:"memo,omitempty"`
	Pending        bool      `firestore:"pending" json:"pending"`
	Category       string    `firestore:"category" json:"category,omitempty"`
	CategorySource string    `firestore:"categorySource" json:"categorySource,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt" json:"updatedAt"`
}
