package http

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
	"github.com/mrlokans/weddingplanner/internal/storage"
	"github.com/mrlokans/weddingplanner/internal/tasks"
)

const maxOriginalNameLength = 255

// UploadController stores user files and serves them back publicly.
type UploadController struct {
	store    UploadStore
	files    storage.FileStore
	queue    TaskQueue
	auditor  Auditor
	maxBytes int64
	errors   *apperr.Handler
}

func NewUploadController(store UploadStore, files storage.FileStore, queue TaskQueue, auditor Auditor, maxBytes int64, errs *apperr.Handler) *UploadController {
	return &UploadController{
		store:    store,
		files:    files,
		queue:    queue,
		auditor:  auditor,
		maxBytes: maxBytes,
		errors:   errs,
	}
}

// Upload accepts a multipart "file" with a "purpose" field. The content type
// is sniffed from the bytes; the client's declared type is ignored. Images get
// a thumbnail generated in the background.
func (uc *UploadController) Upload(c *gin.Context) {
	purpose := entities.UploadPurpose(strings.ToLower(c.PostForm("purpose")))
	fh, err := c.FormFile("file")
	if err != nil {
		uc.errors.Respond(c, apperr.Validation("invalid upload", map[string]string{"file": "is required"}), "upload")
		return
	}
	f, err := fh.Open()
	if err != nil {
		uc.errors.Respond(c, err, "upload")
		return
	}
	defer f.Close()

	contentType, body, err := storage.Sniff(f)
	if err != nil {
		uc.errors.Respond(c, err, "upload")
		return
	}
	if err := storage.Validate(purpose, fh.Size, uc.maxBytes, contentType); err != nil {
		uc.errors.Respond(c, err, "upload")
		return
	}

	ctx := c.Request.Context()
	key, err := uc.files.Save(ctx, string(purpose), contentType, body)
	if err != nil {
		uc.errors.Respond(c, err, "upload")
		return
	}

	upload := &entities.Upload{
		UserID:       GetUserID(c),
		StorageKey:   key,
		Purpose:      purpose,
		ContentType:  contentType,
		Size:         fh.Size,
		URL:          uc.files.URL(key),
		OriginalName: security.SanitizeText(path.Base(fh.Filename), maxOriginalNameLength),
	}
	if err := uc.store.CreateUpload(upload); err != nil {
		_ = uc.files.Delete(ctx, key)
		uc.errors.Respond(c, err, "upload")
		return
	}

	resp := gin.H{"upload": upload}
	if upload.IsImage() && uc.queue != nil {
		taskID, err := uc.queue.Enqueue(ctx, tasks.GenerateThumbnailTask{UploadID: upload.ID})
		if err != nil {
			uc.errors.Handle(ctx, err, apperr.Options{Operation: "enqueue_thumbnail", UserID: upload.UserID})
		} else {
			resp["thumbnail_task_id"] = taskID
		}
	}

	recordAction(uc.auditor, c, audit.Action{
		EventType:  entities.AuditEventUpload,
		Action:     "upload_create",
		EntityType: "upload",
		EntityID:   upload.ID,
		Metadata:   map[string]any{"purpose": purpose, "content_type": contentType, "size": fh.Size},
	})
	respondCreated(c, resp)
}

// ListUploads supports ?purpose= to filter.
func (uc *UploadController) ListUploads(c *gin.Context) {
	purpose := entities.UploadPurpose(strings.ToLower(c.Query("purpose")))
	if purpose != "" && !purpose.Valid() {
		respondBadRequest(c, "invalid purpose")
		return
	}
	uploads, err := uc.store.ListUploads(GetUserID(c), purpose)
	if err != nil {
		uc.errors.Respond(c, err, "list_uploads")
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads, "total": len(uploads)})
}

// DeleteUpload removes the record first, then the stored file and thumbnail.
func (uc *UploadController) DeleteUpload(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)
	upload, err := uc.store.GetUpload(userID, id)
	if err != nil {
		uc.errors.Respond(c, notFoundAs(err, "upload"), "delete_upload")
		return
	}
	if err := uc.store.DeleteUpload(userID, id); err != nil {
		uc.errors.Respond(c, notFoundAs(err, "upload"), "delete_upload")
		return
	}

	ctx := c.Request.Context()
	for _, key := range []string{upload.StorageKey, upload.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := uc.files.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			uc.errors.Handle(ctx, err, apperr.Options{Operation: "delete_upload_file", UserID: userID})
		}
	}

	recordAction(uc.auditor, c, audit.Action{
		EventType:   entities.AuditEventUpload,
		Action:      "upload_delete",
		Description: "Deleted upload: " + upload.OriginalName,
		EntityType:  "upload",
		EntityID:    id,
	})
	c.Status(http.StatusNoContent)
}

// ServeFile streams a stored file. Keys are unguessable, so files are public.
func (uc *UploadController) ServeFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")
	if key == "" {
		c.Status(http.StatusNotFound)
		return
	}

	rc, err := uc.files.Open(c.Request.Context(), key)
	if err != nil {
		// Unknown and malformed keys both look missing to the client.
		missing := apperr.NotFound("file")
		missing.Err = err
		uc.errors.Respond(c, missing, "serve_file")
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Content-Type-Options", "nosniff")
	c.DataFromReader(http.StatusOK, -1, storage.ContentTypeFor(key), rc, nil)
}
