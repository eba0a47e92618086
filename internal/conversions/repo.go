package conversions

import "context"

// Repo persists conversion records.
type Repo interface {
	Create(ctx context.Context, conv Conversion) error
	Update(ctx context.Context, conv Conversion) error
	GetByID(ctx context.Context, id string) (Conversion, error)
	ListRecent(ctx context.Context, limit int) ([]Conversion, error)
}
