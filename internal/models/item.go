package models

import (
	"time"
)

// Item statuses
const (
	ItemStatusActive       = "active"
	ItemStatusError        = "error"
	ItemStatusDisconnected = "disconnected"
)

// Item providers
const (
	ProviderSimplefin = "simplefin"
	ProviderPlaid     = "plaid"
)

// Item is one linked external financial data source. AccessToken is the
// provider credential (SimpleFin access URL or Plaid access token) and is
// always ciphertext, never plaintext.
type Item struct {
	ItemID       string     `firestore:"itemId" json:"itemId"`
	UID          string     `firestore:"uid" json:"-"`
	Provider     string     `firestore:"provider" json:"provider"`
	Institution  string     `firestore:"institution" json:"institution"`
	Status       string     `firestore:"status" json:"status"`
	AccessToken  string     `firestore:"accessToken" json:"-"`
	Cursor       string     `firestore:"cursor,omitempty" json:"-"` // Plaid sync cursor
	LastSyncedAt *time.Time `firestore:"lastSyncedAt" json:"lastSyncedAt,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `firestore:"updatedAt" json:"updatedAt"`
}
