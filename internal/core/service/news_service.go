package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

// NewsService implements article authoring and comment moderation on top of
// a NewsRepository. Every permission decision goes through domain.CanAuthor
// and domain.CanModerate.
type NewsService struct {
	repo  ports.NewsRepository
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

func NewNewsService(repo ports.NewsRepository, log zerolog.Logger) *NewsService {
	return &NewsService{
		repo:  repo,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// ListArticles returns articles newest first, filtered by query when given.
func (s *NewsService) ListArticles(ctx context.Context, query string) ([]*domain.NewsArticle, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}
	out := make([]*domain.NewsArticle, 0, len(all))
	for _, a := range all {
		if a.Matches(query) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *NewsService) GetArticle(ctx context.Context, id string) (*domain.NewsArticle, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *NewsService) CreateArticle(ctx context.Context, actor *domain.User, in ports.CreateArticleInput) (*domain.NewsArticle, error) {
	if actor == nil || !domain.CanAuthor(actor.Role) {
		return nil, domain.ErrForbidden
	}
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" {
		return nil, domain.Invalid("title", "is required")
	}
	if body == "" {
		return nil, domain.Invalid("body", "is required")
	}

	now := s.now()
	article := &domain.NewsArticle{
		ID:         s.newID(),
		Title:      title,
		Body:       body,
		ImageURL:   strings.TrimSpace(in.ImageURL),
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName(),
		AuthorRole: actor.Role,
		CreatedAt:  now,
		UpdatedAt:  now,
		Tags:       domain.NormalizeTags(in.Tags),
		Comments:   []domain.Comment{},
	}

	if err := s.repo.Insert(ctx, article); err != nil {
		s.log.Error().Err(err).Msg("failed to store article")
		return nil, fmt.Errorf("create article: %w", err)
	}

	s.log.Info().Str("article_id", article.ID).Str("actor_id", actor.ID).Msg("article created")
	return article.Clone(), nil
}

// UpdateArticle applies patch to the article. Only admins and the owning
// partner may edit; the author snapshot is never touched.
func (s *NewsService) UpdateArticle(ctx context.Context, articleID string, actor *domain.User, patch ports.ArticlePatch) (*domain.NewsArticle, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}

	updated, err := s.repo.Update(ctx, articleID, func(a *domain.NewsArticle) error {
		if !domain.CanModerate(actor.Role, actor.ID, a.AuthorID) {
			return domain.ErrForbidden
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return domain.Invalid("title", "must not be empty")
			}
			a.Title = title
		}
		if patch.Body != nil {
			body := strings.TrimSpace(*patch.Body)
			if body == "" {
				return domain.Invalid("body", "must not be empty")
			}
			a.Body = body
		}
		if patch.SetTags {
			a.Tags = domain.NormalizeTags(patch.Tags)
		}
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}

	s.log.Info().Str("article_id", articleID).Str("actor_id", actor.ID).Msg("article updated")
	return updated, nil
}

// AddComment attaches a comment to the article. Comments by clients start
// pending; staff comments are approved on creation.
func (s *NewsService) AddComment(ctx context.Context, articleID string, actor *domain.User, body string) (*domain.Comment, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.Invalid("body", "is required")
	}

	comment := domain.Comment{
		ID:         s.newID(),
		Body:       body,
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName(),
		AuthorRole: actor.Role,
		CreatedAt:  s.now(),
		IsApproved: domain.InitialCommentState(actor.Role) == domain.CommentApproved,
		ArticleID:  articleID,
	}

	_, err := s.repo.Update(ctx, articleID, func(a *domain.NewsArticle) error {
		a.Comments = append(a.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	s.log.Info().
		Str("article_id", articleID).
		Str("comment_id", comment.ID).
		Str("state", string(comment.State())).
		Msg("comment added")
	return &comment, nil
}

// ApproveComment publishes a pending comment. Approving an approved comment
// succeeds without changing anything.
func (s *NewsService) ApproveComment(ctx context.Context, articleID, commentID string, actor *domain.User) (*domain.Comment, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}

	var approved domain.Comment
	_, err := s.repo.Update(ctx, articleID, func(a *domain.NewsArticle) error {
		if !domain.CanModerate(actor.Role, actor.ID, a.AuthorID) {
			return domain.ErrForbidden
		}
		i := a.CommentIndex(commentID)
		if i < 0 {
			return domain.ErrCommentNotFound
		}
		c := &a.Comments[i]
		if c.State() == domain.CommentApproved {
			approved = *c
			return nil
		}
		if !c.State().CanTransitionTo(domain.CommentApproved) {
			return fmt.Errorf("comment %s cannot be approved from %s", commentID, c.State())
		}
		c.IsApproved = true
		approved = *c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("approve comment: %w", err)
	}

	s.log.Info().Str("article_id", articleID).Str("comment_id", commentID).Str("actor_id", actor.ID).Msg("comment approved")
	return &approved, nil
}

// DeleteComment removes the comment permanently. Deleting a comment that is
// already gone reports ErrCommentNotFound.
func (s *NewsService) DeleteComment(ctx context.Context, articleID, commentID string, actor *domain.User) error {
	if actor == nil {
		return domain.ErrForbidden
	}

	_, err := s.repo.Update(ctx, articleID, func(a *domain.NewsArticle) error {
		if !domain.CanModerate(actor.Role, actor.ID, a.AuthorID) {
			return domain.ErrForbidden
		}
		i := a.CommentIndex(commentID)
		if i < 0 {
			return domain.ErrCommentNotFound
		}
		if !a.Comments[i].State().CanTransitionTo(domain.CommentDeleted) {
			return fmt.Errorf("comment %s cannot be deleted from %s", commentID, a.Comments[i].State())
		}
		a.Comments = append(a.Comments[:i], a.Comments[i+1:]...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	s.log.Info().Str("article_id", articleID).Str("comment_id", commentID).Str("actor_id", actor.ID).Msg("comment deleted")
	return nil
}

// Comments splits the article's comments into visible and pending, in append
// order. Pending comments are only returned to moderators of the article.
func (s *NewsService) Comments(article *domain.NewsArticle, viewer *domain.User) ports.CommentsView {
	view := ports.CommentsView{Visible: []domain.Comment{}}
	moderator := viewer != nil && domain.CanModerate(viewer.Role, viewer.ID, article.AuthorID)
	if moderator {
		view.Pending = []domain.Comment{}
	}
	for _, c := range article.Comments {
		switch {
		case c.IsApproved:
			view.Visible = append(view.Visible, c)
		case moderator:
			view.Pending = append(view.Pending, c)
		}
	}
	return view
}
