package content

import "context"

// Backend is the persistence collaborator. Implementations return
// ErrNotFound when a delete targets a record that does not exist.
type Backend interface {
	// FetchResources returns every resource, newest first.
	FetchResources(ctx context.Context) ([]Resource, error)
	CreateResource(ctx context.Context, r NewResource) (*Resource, error)
	DeleteResource(ctx context.Context, id int64) error

	// FetchLatestNotice returns nil without error when no notice was ever posted.
	FetchLatestNotice(ctx context.Context) (*Notice, error)
	CreateNotice(ctx context.Context, content string) (*Notice, error)

	// FetchCategories returns categories in creation order.
	FetchCategories(ctx context.Context) ([]Category, error)
	// CreateCategory stores a category whose slug is derived with Slugify.
	CreateCategory(ctx context.Context, label string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// FetchRequests returns student requests, newest first.
	FetchRequests(ctx context.Context) ([]StudentRequest, error)
	CreateRequest(ctx context.Context, r NewRequest) (*StudentRequest, error)
	DeleteRequest(ctx context.Context, id int64) error
}
