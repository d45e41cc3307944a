package bootstrap

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/cashstate/backend/internal/errs"
)

// InitFirestore connects to the project's Firestore database. The emulator is
// picked up automatically through FIRESTORE_EMULATOR_HOST.
func InitFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, errs.NewConfigError("firestore client: " + err.Error())
	}
	return client, nil
}
