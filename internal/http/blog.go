package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/blog"
	dbblog "github.com/mrlokans/weddingplanner/internal/database/blog"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// BlogController serves the public blog and the admin editor.
type BlogController struct {
	store   BlogStore
	auditor Auditor
	errors  *apperr.Handler
	now     func() time.Time
}

func NewBlogController(store BlogStore, auditor Auditor, errs *apperr.Handler) *BlogController {
	return &BlogController{store: store, auditor: auditor, errors: errs, now: time.Now}
}

type postRequest struct {
	blog.Input
	Status entities.PostStatus `json:"status"`
}

// PostResponse is a post with its markdown rendered to HTML.
type PostResponse struct {
	entities.BlogPost
	HTML string `json:"html"`
}

func (bc *BlogController) render(post entities.BlogPost) (PostResponse, error) {
	html, err := blog.Render(post.Content)
	if err != nil {
		return PostResponse{}, err
	}
	if post.Tags == nil {
		post.Tags = []entities.BlogTag{}
	}
	return PostResponse{BlogPost: post, HTML: html}, nil
}

func postFilter(c *gin.Context, p pagination) dbblog.PostFilter {
	return dbblog.PostFilter{
		Category: strings.ToLower(c.Query("category")),
		Tag:      c.Query("tag"),
		Search:   c.Query("q"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
}

// ListPublished lists published posts, newest first. Content is omitted.
func (bc *BlogController) ListPublished(c *gin.Context) {
	p := parsePagination(c)
	filter := postFilter(c, p)
	filter.Status = entities.PostStatusPublished

	posts, total, err := bc.store.ListPosts(filter)
	if err != nil {
		bc.errors.Respond(c, err, "list_posts")
		return
	}
	for i := range posts {
		posts[i].Content = ""
	}
	c.JSON(http.StatusOK, newPaginatedResponse(posts, total, p))
}

// GetPublished returns one published post by slug and counts the view.
func (bc *BlogController) GetPublished(c *gin.Context) {
	post, err := bc.store.GetPostBySlug(strings.ToLower(c.Param("slug")))
	if err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), "get_post")
		return
	}
	if !blog.IsPublic(*post) {
		bc.errors.Respond(c, apperr.NotFound("post"), "get_post")
		return
	}

	if err := bc.store.IncrementViews(post.ID); err != nil {
		bc.errors.Handle(c.Request.Context(), err, apperr.Options{Operation: "increment_post_views", Severity: apperr.SeverityLow})
	} else {
		post.ViewCount++
	}

	resp, err := bc.render(*post)
	if err != nil {
		bc.errors.Respond(c, err, "get_post")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTags returns every tag in use.
func (bc *BlogController) ListTags(c *gin.Context) {
	tags, err := bc.store.ListTags()
	if err != nil {
		bc.errors.Respond(c, err, "list_tags")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// AdminList lists posts of every status. ?status= narrows.
func (bc *BlogController) AdminList(c *gin.Context) {
	p := parsePagination(c)
	filter := postFilter(c, p)
	if raw := c.Query("status"); raw != "" {
		filter.Status = entities.PostStatus(strings.ToLower(raw))
		if !filter.Status.Valid() {
			respondBadRequest(c, "invalid status")
			return
		}
	}

	posts, total, err := bc.store.ListPosts(filter)
	if err != nil {
		bc.errors.Respond(c, err, "admin_list_posts")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(posts, total, p))
}

func (bc *BlogController) AdminGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := bc.store.GetPostByID(id)
	if err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), "admin_get_post")
		return
	}
	resp, err := bc.render(*post)
	if err != nil {
		bc.errors.Respond(c, err, "admin_get_post")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create stores a new post. Without an explicit slug one is derived from the
// title, suffixed -2, -3, ... on collision.
func (bc *BlogController) Create(c *gin.Context) {
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		bc.errors.Respond(c, err, "create_post")
		return
	}
	if err := req.Normalize(); err != nil {
		bc.errors.Respond(c, err, "create_post")
		return
	}
	status := req.Status
	if status == "" {
		status = entities.PostStatusDraft
	}

	post := &entities.BlogPost{AuthorID: GetUserID(c)}
	req.Apply(post)
	if err := blog.ApplyStatus(post, status, bc.now()); err != nil {
		bc.errors.Respond(c, apperr.Validation("invalid input", map[string]string{"status": err.Error()}), "create_post")
		return
	}
	slug, err := bc.allocateSlug(req.Slug, req.Title, 0)
	if err != nil {
		bc.errors.Respond(c, err, "create_post")
		return
	}
	post.Slug = slug

	if err := bc.store.CreatePost(post, req.Tags); err != nil {
		bc.errors.Respond(c, err, "create_post")
		return
	}
	bc.record(c, "post_create", post)
	respondCreated(c, post)
}

// Update replaces the editable fields. The slug only changes when a new one
// is given.
func (bc *BlogController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req postRequest
	if err := bindJSON(c, &req); err != nil {
		bc.errors.Respond(c, err, "update_post")
		return
	}
	if err := req.Normalize(); err != nil {
		bc.errors.Respond(c, err, "update_post")
		return
	}

	post, err := bc.store.GetPostByID(id)
	if err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), "update_post")
		return
	}
	req.Apply(post)
	if req.Status != "" {
		if err := blog.ApplyStatus(post, req.Status, bc.now()); err != nil {
			bc.errors.Respond(c, apperr.Validation("invalid input", map[string]string{"status": err.Error()}), "update_post")
			return
		}
	}
	if req.Slug != "" && req.Slug != post.Slug {
		slug, err := bc.allocateSlug(req.Slug, req.Title, post.ID)
		if err != nil {
			bc.errors.Respond(c, err, "update_post")
			return
		}
		post.Slug = slug
	}

	if err := bc.store.UpdatePost(post, req.Tags); err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), "update_post")
		return
	}
	bc.record(c, "post_update", post)
	c.JSON(http.StatusOK, post)
}

// allocateSlug validates a requested slug or derives a free one from title.
func (bc *BlogController) allocateSlug(requested, title string, excludeID uint) (string, error) {
	if requested != "" {
		taken, err := bc.store.SlugExists(requested, excludeID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", apperr.Conflict("slug is already in use")
		}
		return requested, nil
	}
	return blog.UniqueSlug(title, func(s string) (bool, error) {
		return bc.store.SlugExists(s, excludeID)
	})
}

func (bc *BlogController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := bc.store.GetPostByID(id)
	if err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), "delete_post")
		return
	}
	if err := bc.store.DeletePost(id); err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), "delete_post")
		return
	}
	bc.record(c, "post_delete", post)
	c.Status(http.StatusNoContent)
}

func (bc *BlogController) Publish(c *gin.Context) {
	bc.setStatus(c, entities.PostStatusPublished, "post_publish")
}

// Unpublish returns a post to draft. Its original publish date is kept.
func (bc *BlogController) Unpublish(c *gin.Context) {
	bc.setStatus(c, entities.PostStatusDraft, "post_unpublish")
}

func (bc *BlogController) setStatus(c *gin.Context, status entities.PostStatus, action string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := bc.store.GetPostByID(id)
	if err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), action)
		return
	}
	if err := blog.ApplyStatus(post, status, bc.now()); err != nil {
		bc.errors.Respond(c, err, action)
		return
	}
	if err := bc.store.UpdatePost(post, post.TagNames()); err != nil {
		bc.errors.Respond(c, notFoundAs(err, "post"), action)
		return
	}
	bc.record(c, action, post)
	c.JSON(http.StatusOK, post)
}

func (bc *BlogController) record(c *gin.Context, action string, post *entities.BlogPost) {
	recordAction(bc.auditor, c, audit.Action{
		EventType:   entities.AuditEventBlog,
		Action:      action,
		Description: post.Title,
		EntityType:  "blog_post",
		EntityID:    post.ID,
		Metadata:    map[string]any{"slug": post.Slug, "status": post.Status},
	})
}
