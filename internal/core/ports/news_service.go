package ports

import (
	"context"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// CreateArticleInput carries the fields supplied by the author.
type CreateArticleInput struct {
	Title    string
	Body     string
	ImageURL string
	Tags     []string
}

// ArticlePatch lists the editable fields; nil means "leave unchanged".
type ArticlePatch struct {
	Title *string
	Body  *string
	Tags  []string
	// SetTags distinguishes "clear all tags" from "tags not supplied".
	SetTags bool
}

// CommentsView partitions an article's comments for a particular viewer.
// Pending is populated only for viewers who may moderate the article.
type CommentsView struct {
	Visible []domain.Comment
	Pending []domain.Comment
}

// NewsService implements the news section use cases. The actor argument is
// the session user performing the operation.
type NewsService interface {
	ListArticles(ctx context.Context, query string) ([]*domain.NewsArticle, error)
	GetArticle(ctx context.Context, id string) (*domain.NewsArticle, error)
	CreateArticle(ctx context.Context, actor *domain.User, in CreateArticleInput) (*domain.NewsArticle, error)
	UpdateArticle(ctx context.Context, articleID string, actor *domain.User, patch ArticlePatch) (*domain.NewsArticle, error)
	AddComment(ctx context.Context, articleID string, actor *domain.User, body string) (*domain.Comment, error)
	ApproveComment(ctx context.Context, articleID, commentID string, actor *domain.User) (*domain.Comment, error)
	DeleteComment(ctx context.Context, articleID, commentID string, actor *domain.User) error
	Comments(article *domain.NewsArticle, viewer *domain.User) CommentsView
}
