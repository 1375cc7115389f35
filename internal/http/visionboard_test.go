package http

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/functions"
	"github.com/mrlokans/weddingplanner/internal/tasks"
)

type fakeQueue struct {
	enqueued []backlite.Task
	err      error
	status   backlite.TaskStatus
}

func (q *fakeQueue) Enqueue(_ context.Context, task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(_ context.Context, _ string) (backlite.TaskStatus, error) {
	return q.status, nil
}

type fakeSearcher struct {
	query  string
	result *functions.ImageSearchResult
	err    error
}

func (s *fakeSearcher) SearchImages(_ context.Context, query string, page, perPage int) (*functions.ImageSearchResult, error) {
	s.query = query
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func createItem(t *testing.T, env *testEnv, url string) entities.VisionBoardItem {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/vision-board/items", map[string]any{"image_url": url, "caption": "nice"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.VisionBoardItem](t, w)
}

type itemList struct {
	Items []entities.VisionBoardItem `json:"items"`
	Total int                        `json:"total"`
}

func TestVisionBoard_Preferences(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/vision-board/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[entities.VisionBoardPreference](t, w).Style)

	w = env.do(t, http.MethodPut, "/api/vision-board/preferences", map[string]any{
		"style":  "Boho",
		"season": "Autumn",
		"colors": []string{"sage", " ", "sage", "terracotta"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pref := decode[entities.VisionBoardPreference](t, w)
	assert.Equal(t, "boho", pref.Style)
	assert.Equal(t, "autumn", pref.Season)

	w = env.do(t, http.MethodGet, "/api/vision-board/preferences", nil)
	assert.Equal(t, "boho", decode[entities.VisionBoardPreference](t, w).Style)

	w = env.do(t, http.MethodPut, "/api/vision-board/preferences", map[string]any{"season": "monsoon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVisionBoard_ItemsAndReorder(t *testing.T) {
	env := newTestEnv(t)
	a := createItem(t, env, "https://images.example.com/a.jpg")
	b := createItem(t, env, "https://images.example.com/b.jpg")
	c := createItem(t, env, "https://images.example.com/c.jpg")
	assert.Equal(t, entities.VisionSourceLink, a.Source)
	assert.Equal(t, entities.AnalysisNone, a.AnalysisStatus)
	assert.Equal(t, 2, c.Position)

	w := env.do(t, http.MethodPost, "/api/vision-board/items/reorder", map[string]any{"from": 2, "to": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/vision-board/items", nil)
	list := decode[itemList](t, w)
	require.Len(t, list.Items, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{list.Items[0].ID, list.Items[1].ID, list.Items[2].ID})

	w = env.do(t, http.MethodPost, "/api/vision-board/items/reorder", map[string]any{"ids": []uint{b.ID, c.ID, a.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[itemList](t, env.do(t, http.MethodGet, "/api/vision-board/items", nil))
	assert.Equal(t, b.ID, list.Items[0].ID)

	for _, body := range []map[string]any{
		{"from": 0, "to": 5},
		{"ids": []uint{a.ID, a.ID, b.ID}},
		{},
	} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/vision-board/items/reorder", body).Code, body)
	}

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/vision-board/items/"+itoa(b.ID), nil).Code)
	list = decode[itemList](t, env.do(t, http.MethodGet, "/api/vision-board/items", nil))
	require.Len(t, list.Items, 2)
	assert.Equal(t, 0, list.Items[0].Position)
	assert.Equal(t, 1, list.Items[1].Position)
}

func TestVisionBoard_ItemValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]any{
		{"image_url": ""},
		{"image_url": "javascript:alert(1)"},
		{"image_url": "https://x.example/a.jpg", "source": "magic"},
		{"source": "upload"},
	} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/vision-board/items", body).Code, body)
	}

	w := env.do(t, http.MethodPost, "/api/vision-board/items", map[string]any{"source": "upload", "upload_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVisionBoard_UpdateKeepsImage(t *testing.T) {
	env := newTestEnv(t)
	item := createItem(t, env, "https://images.example.com/a.jpg")

	w := env.do(t, http.MethodPut, "/api/vision-board/items/"+itoa(item.ID), map[string]any{
		"caption":   "Table flowers",
		"category":  "Flowers",
		"image_url": "https://evil.example.com/x.jpg",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[entities.VisionBoardItem](t, w)
	assert.Equal(t, "Table flowers", updated.Caption)
	assert.Equal(t, "flowers", updated.Category)
	assert.Equal(t, "https://images.example.com/a.jpg", updated.ImageURL)
}

func TestVisionBoard_AnalyzeQueuesTask(t *testing.T) {
	queue := &fakeQueue{}
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.Tasks = queue })
	item := createItem(t, env, "https://images.example.com/a.jpg")

	w := env.do(t, http.MethodPost, "/api/vision-board/items/"+itoa(item.ID)+"/analyze", nil)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, tasks.AnalyzeVisionItemTask{ItemID: item.ID, UserID: 0}, queue.enqueued[0])

	stored, err := env.board.GetItem(0, item.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.AnalysisPending, stored.AnalysisStatus)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/vision-board/items/999/analyze", nil).Code)
}

func TestVisionBoard_Search(t *testing.T) {
	searcher := &fakeSearcher{result: &functions.ImageSearchResult{
		Total:  1,
		Images: []functions.Image{{ID: "1", URL: "https://images.example.com/1.jpg"}},
	}}
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.ImageSearch = searcher })
	env.do(t, http.MethodPut, "/api/vision-board/preferences", map[string]any{"style": "rustic", "season": "summer"})

	w := env.do(t, http.MethodGet, "/api/vision-board/search?q=barn", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[functions.ImageSearchResult](t, w).Total)
	assert.Contains(t, searcher.query, "barn")
	assert.Contains(t, searcher.query, "rustic")
	assert.Contains(t, searcher.query, "summer")
}

func TestVisionBoard_SearchUpstreamErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{functions.ErrNotConfigured, http.StatusServiceUnavailable},
		{functions.ErrRateLimited, http.StatusTooManyRequests},
		{&functions.RequestError{StatusCode: http.StatusBadRequest, Message: "bad query"}, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		searcher := &fakeSearcher{err: tt.err}
		env := newTestEnv(t, func(cfg *RouterConfig) { cfg.ImageSearch = searcher })

		w := env.do(t, http.MethodGet, "/api/vision-board/search", nil)

		assert.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}
