package request

import "context"

type Repository interface {
	// Create inserts the request together with its documents.
	Create(ctx context.Context, r *Request) error
	// GetByID preloads documents; soft-deleted requests are not found.
	GetByID(ctx context.Context, id uint64) (*Request, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Request, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]Request, error)
	Save(ctx context.Context, r *Request) error
	ReplaceDocuments(ctx context.Context, requestID uint64, docs []Document) error
	SoftDelete(ctx context.Context, r *Request, by uint64) error

	// NextSequence atomically increments and returns the counter for year.
	NextSequence(ctx context.Context, year int) (int, error)
}
