package models

import (
	"time"
)

// SyncJob statuses. A job only ever moves running -> completed or
// running -> failed.
const (
	SyncJobRunning   = "running"
	SyncJobCompleted = "completed"
	SyncJobFailed    = "failed"
)

// SyncJob is the audit record of one sync attempt against an Item.
type SyncJob struct {
	JobID               string     `firestore:"jobId" json:"jobId"`
	ItemID              string     `firestore:"itemId" json:"itemId"`
	Status              string     `firestore:"status" json:"status"`
	AccountsSynced      int        `firestore:"accountsSynced" json:"accountsSynced"`
	TransactionsAdded   int        `firestore:"transactionsAdded" json:"transactionsAdded"`
	TransactionsUpdated int        `firestore:"transactionsUpdated" json:"transactionsUpdated"`
	ErrorMessage        string     `firestore:"errorMessage" json:"errorMessage,omitempty"`
	CreatedAt           time.Time  `firestore:"createdAt" json:"createdAt"`
	CompletedAt         *time.Time `firestore:"completedAt" json:"completedAt,omitempty"`
}
