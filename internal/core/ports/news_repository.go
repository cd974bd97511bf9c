package ports

import (
	"context"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// NewsRepository holds articles and their nested comments. Implementations
// return copies; mutations go through Insert and Update only.
type NewsRepository interface {
	// List returns every article, newest first by creation time.
	List(ctx context.Context) ([]*domain.NewsArticle, error)
	FindByID(ctx context.Context, id string) (*domain.NewsArticle, error)
	// Insert places the article at the front of the collection.
	Insert(ctx context.Context, article *domain.NewsArticle) error
	// Update runs fn on the stored article under exclusive access and keeps
	// its changes only when fn returns nil.
	Update(ctx context.Context, id string, fn func(a *domain.NewsArticle) error) (*domain.NewsArticle, error)
}
