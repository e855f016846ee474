package subject

import (
	"context"
)

// Repository provides access to the billing subject store. The core never
// creates or deletes subjects; it only reads them and updates billing fields.
type Repository interface {
	Get(ctx context.Context, id string) (*Subject, error)
	Update(ctx context.Context, subject *Subject) error
}
