package domain

import (
	"strings"
	"time"
)

// CommentState is the moderation state of a Comment.
type CommentState string

const (
	CommentPending  CommentState = "pending_approval"
	CommentApproved CommentState = "approved"
	// CommentDeleted is terminal; deleted comments are removed from the
	// article, so the state is never observed on a stored comment.
	CommentDeleted CommentState = "deleted"
)

var commentTransitions = map[CommentState][]CommentState{
	CommentPending:  {CommentApproved, CommentDeleted},
	CommentApproved: {CommentDeleted},
}

// CanTransitionTo reports whether a comment may move from s to next.
func (s CommentState) CanTransitionTo(next CommentState) bool {
	for _, allowed := range commentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InitialCommentState is the state a new comment starts in. Staff comments
// are published immediately; client comments wait for a moderator.
func InitialCommentState(author Role) CommentState {
	if author == RoleClient {
		return CommentPending
	}
	return CommentApproved
}

// Comment is a reader reply attached to exactly one NewsArticle.
type Comment struct {
	ID         string    `json:"id"`
	Body       string    `json:"body"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	AuthorRole Role      `json:"authorRole"`
	CreatedAt  time.Time `json:"createdAt"`
	IsApproved bool      `json:"isApproved"`
	ArticleID  string    `json:"articleId"`
}

// State derives the moderation state from the approval flag.
func (c Comment) State() CommentState {
	if c.IsApproved {
		return CommentApproved
	}
	return CommentPending
}

// NewsArticle is a published news item. AuthorName and AuthorRole are
// snapshots taken at creation and are not refreshed when the profile changes.
type NewsArticle struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	AuthorRole Role      `json:"authorRole"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Tags       []string  `json:"tags"`
	Comments   []Comment `json:"comments"`
}

// Clone returns a deep copy so callers never share the stored slices.
func (a *NewsArticle) Clone() *NewsArticle {
	if a == nil {
		return nil
	}
	c := *a
	c.Tags = append([]string(nil), a.Tags...)
	c.Comments = append([]Comment(nil), a.Comments...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	return &c
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (a *NewsArticle) CommentIndex(commentID string) int {
	for i := range a.Comments {
		if a.Comments[i].ID == commentID {
			return i
		}
	}
	return -1
}

// Matches reports whether the query occurs, case-insensitively, in the
// title, the body or any tag. An empty query matches everything.
func (a *NewsArticle) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Body), q) {
		return true
	}
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// NormalizeTags trims every tag, drops empties and duplicates, and keeps the
// first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseTags splits comma-separated tag text, as typed into the article form.
func ParseTags(text string) []string {
	return NormalizeTags(strings.Split(text, ","))
}
