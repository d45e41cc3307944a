package models

import (
	"time"
)

// Account is one external financial account under an Item. ExternalID is
// the source-assigned account identifier; (uid, itemId, externalId) is the
// reconciliation key and maps to the Firestore document ID.
type Account struct {
	AccountID        string    `firestore:"accountId" json:"accountId"`
	ItemID           string    `firestore:"itemId" json:"itemId"`
	ExternalID       string    `firestore:"externalId" json:"externalId"`
	Name             string    `firestore:"name" json:"name"`
	Currency         string    `firestore:"currency" json:"currency"`
	Balance          *float64  `firestore:"balance" json:"balance,omitempty"`
	AvailableBalance *float64  `firestore:"availableBalance" json:"availableBalance,omitempty"`
	BalanceDate      *int64    `firestore:"balanceDate" json:"balanceDate,omitempty"` // Unix millis
	Institution      string    `firestore:"institution" json:"institution,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt" json:"updatedAt"`
}
