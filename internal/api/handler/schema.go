package handler

import (
	"time"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn"`
	User      *domain.User `json:"user"`
}

// --- News ---

type createArticleRequest struct {
	Title    string   `json:"title"    validate:"required,max=200"`
	Body     string   `json:"body"     validate:"required"`
	ImageURL string   `json:"imageUrl" validate:"omitempty,url"`
	Tags     []string `json:"tags"     validate:"omitempty,dive,max=40"`
	// TagsText is the comma-separated form typed into the article editor;
	// it is used only when Tags is empty.
	TagsText string `json:"tagsText"`
}

type updateArticleRequest struct {
	Title *string   `json:"title" validate:"omitempty,max=200"`
	Body  *string   `json:"body"`
	Tags  *[]string `json:"tags"`
}

type commentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type articleResponse struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Body            string           `json:"body"`
	ImageURL        string           `json:"imageUrl,omitempty"`
	AuthorID        string           `json:"authorId"`
	AuthorName      string           `json:"authorName"`
	AuthorRole      domain.Role      `json:"authorRole"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Tags            []string         `json:"tags"`
	Comments        []domain.Comment `json:"comments"`
	PendingComments []domain.Comment `json:"pendingComments,omitempty"`
	CanModerate     bool             `json:"canModerate"`
}

type articleListResponse struct {
	Items []articleResponse `json:"items"`
	Total int               `json:"total"`
}

type commentResponse struct {
	Comment domain.Comment `json:"comment"`
	State   string         `json:"state"`
}

// --- Admin ---

type auditListResponse struct {
	Items []domain.AuditLogEntry `json:"items"`
	Total int                    `json:"total"`
}
