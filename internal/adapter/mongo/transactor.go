package mongo

import (
	"context"
	"fmt"

	"storefront-backend/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

type transactor struct {
	client  *mongo.Client
	enabled bool
}

// NewTransactor returns a Transactor backed by client sessions. Standalone
// servers reject multi-document transactions, so with enabled=false fn runs
// directly and its steps commit one by one.
func NewTransactor(client *mongo.Client, enabled bool) repository.Transactor {
	return &transactor{client: client, enabled: enabled}
}

func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
