package handler

import (
	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createArticleRequest) ports.CreateArticleInput {
	tags := req.Tags
	if len(tags) == 0 && req.TagsText != "" {
		tags = domain.ParseTags(req.TagsText)
	}
	return ports.CreateArticleInput{
		Title:    req.Title,
		Body:     req.Body,
		ImageURL: req.ImageURL,
		Tags:     tags,
	}
}

func toArticlePatch(req updateArticleRequest) ports.ArticlePatch {
	patch := ports.ArticlePatch{Title: req.Title, Body: req.Body}
	if req.Tags != nil {
		patch.Tags = *req.Tags
		patch.SetTags = true
	}
	return patch
}

// --- Service result → HTTP response ---

func toArticleResponse(a *domain.NewsArticle, view ports.CommentsView, moderator bool) articleResponse {
	return articleResponse{
		ID:              a.ID,
		Title:           a.Title,
		Body:            a.Body,
		ImageURL:        a.ImageURL,
		AuthorID:        a.AuthorID,
		AuthorName:      a.AuthorName,
		AuthorRole:      a.AuthorRole,
		CreatedAt:       a.CreatedAt.UTC(),
		UpdatedAt:       a.UpdatedAt.UTC(),
		Tags:            nonNilTags(a.Tags),
		Comments:        view.Visible,
		PendingComments: view.Pending,
		CanModerate:     moderator,
	}
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{Comment: *c, State: string(c.State())}
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
