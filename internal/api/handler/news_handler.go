package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/metalprofile/corporate-site/internal/api/metrics"
	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

// NewsHandler serves the news section: articles and their comments.
type NewsHandler struct {
	news  ports.NewsService
	audit ports.AuditService
}

func NewNewsHandler(news ports.NewsService, audit ports.AuditService) *NewsHandler {
	return &NewsHandler{news: news, audit: audit}
}

// List handles GET /v1/news.
//
// @Summary      List news articles
// @Description  Newest first. Anonymous callers see approved comments only.
// @Tags         news
// @Produce      json
// @Param        q    query     string  false  "Case-insensitive search on title, body and tags"
// @Success      200  {object}  articleListResponse
// @Router       /v1/news [get]
func (h *NewsHandler) List(c echo.Context) error {
	articles, err := h.news.ListArticles(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}

	who := viewer(c)
	items := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		items = append(items, h.present(a, who))
	}
	return c.JSON(http.StatusOK, articleListResponse{Items: items, Total: len(items)})
}

// Get handles GET /v1/news/:id.
//
// @Summary      Get a news article
// @Tags         news
// @Produce      json
// @Param        id   path      string  true  "Article id"
// @Success      200  {object}  articleResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/news/{id} [get]
func (h *NewsHandler) Get(c echo.Context) error {
	article, err := h.news.GetArticle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.present(article, viewer(c)))
}

// Create handles POST /v1/news.
//
// @Summary      Publish a news article
// @Tags         news
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createArticleRequest  true  "Article"
// @Success      201   {object}  articleResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/news [post]
func (h *NewsHandler) Create(c echo.Context) error {
	actor, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req createArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	article, err := h.news.CreateArticle(c.Request().Context(), actor, toCreateInput(req))
	if err != nil {
		return err
	}
	metrics.ArticlesCreatedTotal.WithLabelValues(actor.Role.String()).Inc()
	recordAudit(c, h.audit, domain.ActionCreateNews, actor,
		fmt.Sprintf("Created news ID:%s '%s'", article.ID, article.Title))

	return c.JSON(http.StatusCreated, h.present(article, actor))
}

// Update handles PATCH /v1/news/:id.
//
// @Summary      Edit a news article
// @Description  Admins may edit any article; partners only their own.
// @Tags         news
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Article id"
// @Param        body  body      updateArticleRequest  true  "Fields to change"
// @Success      200   {object}  articleResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/news/{id} [patch]
func (h *NewsHandler) Update(c echo.Context) error {
	actor, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req updateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id := c.Param("id")
	article, err := h.news.UpdateArticle(c.Request().Context(), id, actor, toArticlePatch(req))
	if err != nil {
		return err
	}
	recordAudit(c, h.audit, domain.ActionEditNews, actor, fmt.Sprintf("Edited news ID:%s", id))

	return c.JSON(http.StatusOK, h.present(article, actor))
}

// AddComment handles POST /v1/news/:id/comments.
//
// @Summary      Comment on an article
// @Description  Client comments wait for moderation; staff comments are published at once.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Article id"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      201   {object}  commentResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/news/{id}/comments [post]
func (h *NewsHandler) AddComment(c echo.Context) error {
	actor, err := sessionUser(c)
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id := c.Param("id")
	comment, err := h.news.AddComment(c.Request().Context(), id, actor, req.Body)
	if err != nil {
		return err
	}
	metrics.CommentsTotal.WithLabelValues(string(comment.State())).Inc()
	recordAudit(c, h.audit, domain.ActionAddComment, actor, fmt.Sprintf("Added comment to news ID:%s", id))

	return c.JSON(http.StatusCreated, toCommentResponse(comment))
}

// ApproveComment handles POST /v1/news/:id/comments/:commentId/approve.
//
// @Summary      Approve a pending comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Article id"
// @Param        commentId  path      string  true  "Comment id"
// @Success      200        {object}  commentResponse
// @Failure      403        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /v1/news/{id}/comments/{commentId}/approve [post]
func (h *NewsHandler) ApproveComment(c echo.Context) error {
	actor, err := sessionUser(c)
	if err != nil {
		return err
	}

	id, commentID := c.Param("id"), c.Param("commentId")
	comment, err := h.news.ApproveComment(c.Request().Context(), id, commentID, actor)
	if err != nil {
		return err
	}
	metrics.ModerationActionsTotal.WithLabelValues("approve").Inc()
	recordAudit(c, h.audit, domain.ActionApproveComment, actor,
		fmt.Sprintf("Approved comment ID:%s on news ID:%s", commentID, id))

	return c.JSON(http.StatusOK, toCommentResponse(comment))
}

// DeleteComment handles DELETE /v1/news/:id/comments/:commentId.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        id         path  string  true  "Article id"
// @Param        commentId  path  string  true  "Comment id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/news/{id}/comments/{commentId} [delete]
func (h *NewsHandler) DeleteComment(c echo.Context) error {
	actor, err := sessionUser(c)
	if err != nil {
		return err
	}

	id, commentID := c.Param("id"), c.Param("commentId")
	if err := h.news.DeleteComment(c.Request().Context(), id, commentID, actor); err != nil {
		return err
	}
	metrics.ModerationActionsTotal.WithLabelValues("delete").Inc()
	recordAudit(c, h.audit, domain.ActionDeleteComment, actor,
		fmt.Sprintf("Deleted comment ID:%s on news ID:%s", commentID, id))

	return c.NoContent(http.StatusNoContent)
}

func (h *NewsHandler) present(a *domain.NewsArticle, who *domain.User) articleResponse {
	moderator := who != nil && domain.CanModerate(who.Role, who.ID, a.AuthorID)
	return toArticleResponse(a, h.news.Comments(a, who), moderator)
}
