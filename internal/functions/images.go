package functions

import "context"

const (
	defaultPerPage = 20
	maxPerPage     = 50
)

type Image struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Description  string `json:"description,omitempty"`
	Photographer string `json:"photographer,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

type ImageSearchResult struct {
	Query   string  `json:"query"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	Total   int     `json:"total"`
	Images  []Image `json:"images"`
}

// SearchImages queries the image search function. page starts at 1.
func (c *Client) SearchImages(ctx context.Context, query string, page, perPage int) (*ImageSearchResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	in := struct {
		Query   string `json:"query"`
		Page    int    `json:"page"`
		PerPage int    `json:"per_page"`
	}{query, page, perPage}

	var result ImageSearchResult
	if err := c.call(ctx, "search-images", in, &result); err != nil {
		return nil, err
	}
	if result.Images == nil {
		result.Images = []Image{}
	}
	return &result, nil
}
