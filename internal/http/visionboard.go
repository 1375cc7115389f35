package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/tasks"
	"github.com/mrlokans/weddingplanner/internal/visionboard"
)

// VisionBoardController manages the couple's inspiration board.
type VisionBoardController struct {
	store    VisionBoardStore
	uploads  UploadStore
	searcher ImageSearcher
	queue    TaskQueue
	errors   *apperr.Handler
}

func NewVisionBoardController(store VisionBoardStore, uploads UploadStore, searcher ImageSearcher, queue TaskQueue, errs *apperr.Handler) *VisionBoardController {
	return &VisionBoardController{
		store:    store,
		uploads:  uploads,
		searcher: searcher,
		queue:    queue,
		errors:   errs,
	}
}

type preferencesRequest struct {
	Style    string   `json:"style"`
	Season   string   `json:"season"`
	Colors   []string `json:"colors"`
	Themes   []string `json:"themes"`
	Keywords string   `json:"keywords"`
}

type itemRequest struct {
	UploadID  *uint                     `json:"upload_id"`
	ImageURL  string                    `json:"image_url"`
	Source    entities.VisionItemSource `json:"source"`
	SourceURL string                    `json:"source_url"`
	Caption   string                    `json:"caption"`
	Category  string                    `json:"category"`
}

// reorderRequest moves one item (From/To) or replaces the whole order (IDs).
type reorderRequest struct {
	From *int   `json:"from"`
	To   *int   `json:"to"`
	IDs  []uint `json:"ids"`
}

func (vc *VisionBoardController) GetPreferences(c *gin.Context) {
	pref, err := vc.store.GetPreferences(GetUserID(c))
	if err != nil {
		vc.errors.Respond(c, err, "get_preferences")
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (vc *VisionBoardController) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := bindJSON(c, &req); err != nil {
		vc.errors.Respond(c, err, "update_preferences")
		return
	}

	pref := &entities.VisionBoardPreference{
		UserID:   GetUserID(c),
		Style:    req.Style,
		Season:   req.Season,
		Colors:   req.Colors,
		Themes:   req.Themes,
		Keywords: req.Keywords,
	}
	if err := visionboard.ValidatePreferences(pref); err != nil {
		vc.errors.Respond(c, err, "update_preferences")
		return
	}
	if err := vc.store.SavePreferences(pref); err != nil {
		vc.errors.Respond(c, err, "update_preferences")
		return
	}
	c.JSON(http.StatusOK, pref)
}

func (vc *VisionBoardController) ListItems(c *gin.Context) {
	items, err := vc.store.ListItems(GetUserID(c))
	if err != nil {
		vc.errors.Respond(c, err, "list_vision_items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (vc *VisionBoardController) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := bindJSON(c, &req); err != nil {
		vc.errors.Respond(c, err, "create_vision_item")
		return
	}

	userID := GetUserID(c)
	item := &entities.VisionBoardItem{
		UserID:         userID,
		UploadID:       req.UploadID,
		ImageURL:       req.ImageURL,
		Source:         req.Source,
		SourceURL:      req.SourceURL,
		Caption:        req.Caption,
		Category:       req.Category,
		AnalysisStatus: entities.AnalysisNone,
	}
	if err := visionboard.ValidateItem(item); err != nil {
		vc.errors.Respond(c, err, "create_vision_item")
		return
	}
	if item.Source == entities.VisionSourceUpload {
		upload, err := vc.uploads.GetUpload(userID, *item.UploadID)
		if err != nil {
			vc.errors.Respond(c, notFoundAs(err, "upload"), "create_vision_item")
			return
		}
		if !upload.IsImage() {
			vc.errors.Respond(c, apperr.Validation("invalid input",
				map[string]string{"upload_id": "must reference an image"}), "create_vision_item")
			return
		}
		item.ImageURL = upload.URL
		item.ThumbnailURL = upload.ThumbnailURL
	} else {
		item.UploadID = nil
	}

	if err := vc.store.CreateItem(item); err != nil {
		vc.errors.Respond(c, err, "create_vision_item")
		return
	}
	respondCreated(c, item)
}

// UpdateItem edits the caption and category. The image itself is immutable.
func (vc *VisionBoardController) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req itemRequest
	if err := bindJSON(c, &req); err != nil {
		vc.errors.Respond(c, err, "update_vision_item")
		return
	}

	item, err := vc.store.GetItem(GetUserID(c), id)
	if err != nil {
		vc.errors.Respond(c, notFoundAs(err, "vision board item"), "update_vision_item")
		return
	}
	item.Caption = req.Caption
	item.Category = req.Category
	if err := visionboard.ValidateItem(item); err != nil {
		vc.errors.Respond(c, err, "update_vision_item")
		return
	}
	if err := vc.store.UpdateItem(item); err != nil {
		vc.errors.Respond(c, notFoundAs(err, "vision board item"), "update_vision_item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (vc *VisionBoardController) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := vc.store.DeleteItem(GetUserID(c), id); err != nil {
		vc.errors.Respond(c, notFoundAs(err, "vision board item"), "delete_vision_item")
		return
	}
	c.Status(http.StatusNoContent)
}

// Reorder persists a new ordering. Concurrent reorders are last write wins.
func (vc *VisionBoardController) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := bindJSON(c, &req); err != nil {
		vc.errors.Respond(c, err, "reorder_vision_items")
		return
	}

	userID := GetUserID(c)
	items, err := vc.store.ListItems(userID)
	if err != nil {
		vc.errors.Respond(c, err, "reorder_vision_items")
		return
	}
	items = visionboard.Sorted(items)

	var ordered []entities.VisionBoardItem
	switch {
	case req.IDs != nil:
		ordered, err = visionboard.ApplyOrder(items, req.IDs)
	case req.From != nil && req.To != nil:
		ordered, err = visionboard.Reorder(items, *req.From, *req.To)
	default:
		respondBadRequest(c, "either from and to, or ids, is required")
		return
	}
	if err != nil {
		if errors.Is(err, visionboard.ErrIndexOutOfRange) || errors.Is(err, visionboard.ErrOrderMismatch) {
			err = apperr.Validation(err.Error(), nil)
		}
		vc.errors.Respond(c, err, "reorder_vision_items")
		return
	}

	if err := vc.store.SavePositions(userID, ordered); err != nil {
		vc.errors.Respond(c, err, "reorder_vision_items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ordered, "total": len(ordered)})
}

// Search queries the image search function with the couple's preferences.
// ?q= adds free text, ?page= and ?per_page= page through results.
func (vc *VisionBoardController) Search(c *gin.Context) {
	if vc.searcher == nil {
		vc.errors.Respond(c, apperr.Unavailable("image search is not configured"), "search_images")
		return
	}
	pref, err := vc.store.GetPreferences(GetUserID(c))
	if err != nil {
		vc.errors.Respond(c, err, "search_images")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	query := visionboard.BuildSearchQuery(*pref, c.Query("q"))

	result, err := vc.searcher.SearchImages(c.Request.Context(), query, page, perPage)
	if err != nil {
		vc.errors.Respond(c, integrationError("image search", err), "search_images")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Analyze queues AI analysis of an item. The item's analysis_status reports
// progress.
func (vc *VisionBoardController) Analyze(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if vc.queue == nil {
		vc.errors.Respond(c, apperr.Unavailable("background tasks are not available"), "analyze_vision_item")
		return
	}

	userID := GetUserID(c)
	if err := vc.store.SetAnalysisPending(userID, id); err != nil {
		vc.errors.Respond(c, notFoundAs(err, "vision board item"), "analyze_vision_item")
		return
	}
	taskID, err := vc.queue.Enqueue(c.Request.Context(), tasks.AnalyzeVisionItemTask{ItemID: id, UserID: userID})
	if err != nil {
		vc.errors.Respond(c, err, "analyze_vision_item")
		return
	}
	respondAccepted(c, "analysis queued", gin.H{"task_id": taskID, "item_id": id})
}
