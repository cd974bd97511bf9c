package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// NewsRepository keeps articles, newest first, with their comments nested.
type NewsRepository struct {
	mu       sync.RWMutex
	articles []*domain.NewsArticle
}

func NewNewsRepository() *NewsRepository {
	return &NewsRepository{}
}

func (r *NewsRepository) List(_ context.Context) ([]*domain.NewsArticle, error) {
	r.mu.RLock()
	out := make([]*domain.NewsArticle, len(r.articles))
	for i, a := range r.articles {
		out[i] = a.Clone()
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *NewsRepository) FindByID(_ context.Context, id string) (*domain.NewsArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.articles[i].Clone(), nil
	}
	return nil, domain.ErrArticleNotFound
}

func (r *NewsRepository) Insert(_ context.Context, article *domain.NewsArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = append([]*domain.NewsArticle{article.Clone()}, r.articles...)
	return nil
}

// Update hands fn a working copy and swaps it in only on success, so a
// rejected operation leaves the stored article untouched.
func (r *NewsRepository) Update(_ context.Context, id string, fn func(a *domain.NewsArticle) error) (*domain.NewsArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, domain.ErrArticleNotFound
	}
	work := r.articles[i].Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	r.articles[i] = work
	return work.Clone(), nil
}

func (r *NewsRepository) index(id string) int {
	for i, a := range r.articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}
