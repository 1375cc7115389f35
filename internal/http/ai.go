package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/gemini"
	"github.com/mrlokans/weddingplanner/internal/imageutil"
	"github.com/mrlokans/weddingplanner/internal/storage"
	"github.com/mrlokans/weddingplanner/internal/tasks"
	"github.com/mrlokans/weddingplanner/internal/visionboard"
)

const maxAnalyzeBytes = 10 << 20

// PreferenceReader supplies the couple's vision board preferences for prompts.
type PreferenceReader interface {
	GetPreferences(userID uint) (*entities.VisionBoardPreference, error)
}

// AIController runs synchronous AI requests. Vision board items are analyzed
// through the task queue instead.
type AIController struct {
	analyzer  gemini.ImageAnalyzer
	generator gemini.ContentGenerator
	images    tasks.ImageSource
	prefs     PreferenceReader
	errors    *apperr.Handler
}

func NewAIController(analyzer gemini.ImageAnalyzer, generator gemini.ContentGenerator, images tasks.ImageSource, prefs PreferenceReader, errs *apperr.Handler) *AIController {
	return &AIController{
		analyzer:  analyzer,
		generator: generator,
		images:    images,
		prefs:     prefs,
		errors:    errs,
	}
}

type analyzeImageRequest struct {
	UploadID *uint  `json:"upload_id"`
	ImageURL string `json:"image_url"`
}

type generateRequest struct {
	Kind   gemini.ContentKind `json:"kind"`
	Prompt string             `json:"prompt"`
}

// AnalyzeImage describes an image given as a multipart "file", or as JSON
// naming an upload_id or an image_url.
func (ac *AIController) AnalyzeImage(c *gin.Context) {
	if ac.analyzer == nil {
		ac.errors.Respond(c, apperr.Unavailable("AI analysis is not configured"), "analyze_image")
		return
	}

	data, mimeType, err := ac.readImage(c)
	if err != nil {
		ac.errors.Respond(c, err, "analyze_image")
		return
	}

	pref, err := ac.prefs.GetPreferences(GetUserID(c))
	if err != nil {
		ac.errors.Respond(c, err, "analyze_image")
		return
	}
	analysis, err := ac.analyzer.AnalyzeImage(c.Request.Context(), data, mimeType, visionboard.AnalysisPrompt(*pref))
	if err != nil {
		ac.errors.Respond(c, integrationError("AI analysis", err), "analyze_image")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (ac *AIController) readImage(c *gin.Context) ([]byte, string, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, "", apperr.Validation("could not read uploaded file", nil)
		}
		defer f.Close()
		contentType, body, err := storage.Sniff(f)
		if err != nil {
			return nil, "", err
		}
		if err := storage.Validate(entities.UploadPurposeVision, fh.Size, maxAnalyzeBytes, contentType); err != nil {
			return nil, "", err
		}
		data, err := io.ReadAll(body)
		return data, contentType, err
	}

	var req analyzeImageRequest
	if err := bindJSON(c, &req); err != nil {
		return nil, "", err
	}
	if req.UploadID == nil && strings.TrimSpace(req.ImageURL) == "" {
		return nil, "", apperr.Validation("invalid input", map[string]string{"image": "file, upload_id or image_url is required"})
	}

	item := &entities.VisionBoardItem{UserID: GetUserID(c), UploadID: req.UploadID, ImageURL: strings.TrimSpace(req.ImageURL)}
	data, mimeType, err := ac.images.Load(c.Request.Context(), item)
	if err != nil {
		return nil, "", imageLoadError(err)
	}
	if !storage.IsImageType(mimeType) {
		return nil, "", apperr.Validation("invalid input", map[string]string{"image": "must be a JPEG, PNG, GIF or WebP image"})
	}
	return data, mimeType, nil
}

func imageLoadError(err error) error {
	switch {
	case errors.Is(err, imageutil.ErrTooLarge):
		return apperr.Validation("invalid input", map[string]string{"image": "is too large"})
	case apperr.StatusOf(err) == http.StatusBadRequest:
		return err
	case apperr.StatusOf(err) == http.StatusNotFound:
		return notFoundAs(err, "upload")
	}
	return apperr.Upstream("image download", err)
}

// Generate drafts text of the requested kind from the caller's prompt.
func (ac *AIController) Generate(c *gin.Context) {
	if ac.generator == nil {
		ac.errors.Respond(c, apperr.Unavailable("AI generation is not configured"), "generate_content")
		return
	}

	var req generateRequest
	if err := bindJSON(c, &req); err != nil {
		ac.errors.Respond(c, err, "generate_content")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if !req.Kind.Valid() {
		kinds := make([]string, 0)
		for _, k := range gemini.ContentKinds() {
			kinds = append(kinds, string(k))
		}
		ac.errors.Respond(c, apperr.Validation("invalid input",
			map[string]string{"kind": "must be one of " + strings.Join(kinds, ", ")}), "generate_content")
		return
	}
	if req.Prompt == "" || utf8.RuneCountInString(req.Prompt) > gemini.MaxPromptLength {
		ac.errors.Respond(c, apperr.Validation("invalid input",
			map[string]string{"prompt": "must be between 1 and 4000 characters"}), "generate_content")
		return
	}

	text, err := ac.generator.GenerateContent(c.Request.Context(), req.Kind, req.Prompt)
	if err != nil {
		ac.errors.Respond(c, integrationError("AI generation", err), "generate_content")
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": req.Kind, "content": text})
}
