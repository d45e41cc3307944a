package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/cashstate/backend/internal/errs"
	"github.com/cashstate/backend/internal/models"
)

type syncJobStore struct {
	client *firestore.Client
}

func NewSyncJobStore(client *firestore.Client) *syncJobStore {
	return &syncJobStore{client: client}
}

func (s *syncJobStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("syncJobs")
}

// Create records a running job and returns its ID.
func (s *syncJobStore) CreateJob(ctx context.Context, uid, itemID string) (string, error) {
	doc := s.collection(uid).NewDoc()
	job := models.SyncJob{
		JobID:     doc.ID,
		ItemID:    itemID,
		Status:    models.SyncJobRunning,
		CreatedAt: time.Now(),
	}
	if _, err := doc.Set(ctx, job); err != nil {
		return "", errs.NewDatabaseError("syncJob.create", err.Error())
	}
	return doc.ID, nil
}

// Complete finalizes a job as completed with its counts.
func (s *syncJobStore) CompleteJob(ctx context.Context, uid, jobID string, accounts, added, updated int) error {
	_, err := s.collection(uid).Doc(jobID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.SyncJobCompleted},
		{Path: "accountsSynced", Value: accounts},
		{Path: "transactionsAdded", Value: added},
		{Path: "transactionsUpdated", Value: updated},
		{Path: "completedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("syncJob.complete", err.Error())
	}
	return nil
}

// Fail finalizes a job as failed with the error message.
func (s *syncJobStore) FailJob(ctx context.Context, uid, jobID, message string) error {
	_, err := s.collection(uid).Doc(jobID).Update(ctx, []firestore.Update{
		{Path: "status", Value: models.SyncJobFailed},
		{Path: "errorMessage", Value: message},
		{Path: "completedAt", Value: time.Now()},
	})
	if err != nil {
		return errs.NewDatabaseError("syncJob.fail", err.Error())
	}
	return nil
}

func (s *syncJobStore) GetJob(ctx context.Context, uid, jobID string) (*models.SyncJob, error) {
	doc, err := s.collection(uid).Doc(jobID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, errs.NewNotFoundError("sync job not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("syncJob.get", err.Error())
	}
	var job models.SyncJob
	if err := doc.DataTo(&job); err != nil {
		return nil, errs.NewDatabaseError("syncJob.get", err.Error())
	}
	return &job, nil
}
