package http

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/gemini"
	"github.com/mrlokans/weddingplanner/internal/payments"
)

type fakeAnalyzer struct {
	mimeType string
	prompt   string
	err      error
}

func (a *fakeAnalyzer) AnalyzeImage(_ context.Context, _ []byte, mimeType, prompt string) (*gemini.ImageAnalysis, error) {
	a.mimeType, a.prompt = mimeType, prompt
	if a.err != nil {
		return nil, a.err
	}
	return &gemini.ImageAnalysis{Description: "A barn at dusk", Style: "rustic", Colors: []string{"amber"}}, nil
}

type fakeGenerator struct {
	kind gemini.ContentKind
	err  error
}

func (g *fakeGenerator) GenerateContent(_ context.Context, kind gemini.ContentKind, prompt string) (string, error) {
	g.kind = kind
	if g.err != nil {
		return "", g.err
	}
	return "Draft: " + prompt, nil
}

type fakeImages struct {
	data     []byte
	mimeType string
	err      error
}

func (f *fakeImages) Load(_ context.Context, _ *entities.VisionBoardItem) ([]byte, string, error) {
	return f.data, f.mimeType, f.err
}

func TestAI_UnconfiguredReturns503(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/ai/analyze-image", map[string]any{"image_url": "https://x.example/a.png"}).Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/ai/generate", map[string]any{"kind": "blog_outline", "prompt": "x"}).Code)
}

func TestAI_AnalyzeUploadedFile(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.Analyzer = analyzer })
	env.do(t, http.MethodPut, "/api/vision-board/preferences", map[string]any{"style": "rustic"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "barn.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze-image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "A barn at dusk", decode[gemini.ImageAnalysis](t, w).Description)
	assert.Equal(t, "image/png", analyzer.mimeType)
	assert.Contains(t, analyzer.prompt, "rustic")
}

func TestAI_AnalyzeByURL(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	images := &fakeImages{data: []byte("GIF89a"), mimeType: "image/gif"}
	env := newTestEnv(t, func(cfg *RouterConfig) {
		cfg.Analyzer = analyzer
		cfg.Images = images
	})

	w := env.do(t, http.MethodPost, "/api/ai/analyze-image", map[string]any{"image_url": "https://x.example/a.gif"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/gif", analyzer.mimeType)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/ai/analyze-image", map[string]any{}).Code)

	images.mimeType = "text/html"
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/ai/analyze-image", map[string]any{"image_url": "https://x.example/a"}).Code)

	images.err = errors.New("dial tcp: timeout")
	assert.Equal(t, http.StatusBadGateway, env.do(t, http.MethodPost, "/api/ai/analyze-image", map[string]any{"image_url": "https://x.example/a"}).Code)

	images.err = nil
	images.mimeType = "image/gif"
	analyzer.err = gemini.ErrNotConfigured
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/ai/analyze-image", map[string]any{"image_url": "https://x.example/a.gif"}).Code)
}

func TestAI_Generate(t *testing.T) {
	generator := &fakeGenerator{}
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.Generator = generator })

	w := env.do(t, http.MethodPost, "/api/ai/generate", map[string]any{"kind": "website_story", "prompt": "  we met at a bakery  "})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"kind":"website_story","content":"Draft: we met at a bakery"}`, w.Body.String())
	assert.Equal(t, gemini.KindWebsiteStory, generator.kind)

	for _, body := range []map[string]any{
		{"kind": "poem", "prompt": "x"},
		{"kind": "blog_outline", "prompt": "   "},
		{"kind": "blog_outline", "prompt": strings.Repeat("a", gemini.MaxPromptLength+1)},
	} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/ai/generate", body).Code)
	}

	generator.err = errors.New("model overloaded")
	assert.Equal(t, http.StatusBadGateway, env.do(t, http.MethodPost, "/api/ai/generate", map[string]any{"kind": "blog_outline", "prompt": "x"}).Code)
}

type fakeCheckout struct{ calls int }

func (f *fakeCheckout) StartCheckout(context.Context, *entities.User) (*entities.CheckoutSession, error) {
	f.calls++
	return &entities.CheckoutSession{SessionID: "cs_1"}, nil
}

func (f *fakeCheckout) Verify(context.Context, uint, string) (*payments.Verification, error) {
	f.calls++
	return &payments.Verification{SessionID: "cs_1", Paid: true}, nil
}

func TestPayments_RequireAccounts(t *testing.T) {
	checkout := &fakeCheckout{}
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.Checkout = checkout })

	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/payments/checkout", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/payments/verify", map[string]any{"session_id": "cs_1"}).Code)
	assert.Zero(t, checkout.calls)
}
