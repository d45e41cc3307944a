package bootstrap

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"github.com/cashstate/backend/internal/errs"
)

// InitFirebase builds the auth client used to verify bearer tokens.
// Credentials come from the runtime environment (ADC).
func InitFirebase(ctx context.Context) (*auth.Client, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, errs.NewConfigError("firebase app: " + err.Error())
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errs.NewConfigError("firebase auth client: " + err.Error())
	}
	return client, nil
}
