// Package blog renders posts, allocates slugs and applies publishing rules.
package blog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/security"
)

const (
	ExcerptLength  = 200
	MaxTags        = 10
	maxTagLength   = 50
	maxSlugAttempt = 100
)

var ErrSlugExhausted = errors.New("no free slug found")

// SlugExistsFunc reports whether slug is already taken.
type SlugExistsFunc func(slug string) (bool, error)

// UniqueSlug derives a slug from base and appends -2, -3, ... until exists
// reports it free.
func UniqueSlug(base string, exists SlugExistsFunc) (string, error) {
	slug := security.Slugify(base)
	if len(slug) < security.MinSlugLength {
		slug = strings.Trim("post-"+slug, "-")
	}
	for i := 1; i <= maxSlugAttempt; i++ {
		candidate := slug
		if i > 1 {
			suffix := fmt.Sprintf("-%d", i)
			if len(candidate)+len(suffix) > security.MaxSlugLength {
				candidate = strings.Trim(candidate[:security.MaxSlugLength-len(suffix)], "-")
			}
			candidate += suffix
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrSlugExhausted, base)
}

// ApplyStatus moves post to status. Publishing stamps PublishedAt the first
// time only; unpublishing or archiving keeps it.
func ApplyStatus(post *entities.BlogPost, status entities.PostStatus, now time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("unknown post status %q", status)
	}
	post.Status = status
	if status == entities.PostStatusPublished && post.PublishedAt == nil {
		at := now.UTC()
		post.PublishedAt = &at
	}
	return nil
}

// IsPublic reports whether a post may be shown to anonymous readers.
func IsPublic(post entities.BlogPost) bool {
	return post.Status == entities.PostStatusPublished && post.PublishedAt != nil
}

// Input is the writable part of a post.
type Input struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	CoverImageURL string   `json:"cover_image_url"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
}

// Normalize sanitizes the input and validates it. Tags are
// lowercased and deduplicated.
func (in *Input) Normalize() error {
	in.Title = security.SanitizeText(in.Title, security.MaxTitleLength)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Excerpt = security.SanitizeText(in.Excerpt, security.MaxShortText)
	in.Content = strings.TrimSpace(in.Content)
	in.CoverImageURL = strings.TrimSpace(in.CoverImageURL)
	in.Category = strings.ToLower(security.SanitizeText(in.Category, 50))
	in.Tags = normalizeTags(in.Tags)

	errs := security.FieldErrors{}
	errs.Required("title", in.Title)
	errs.Length("content", in.Content, 0, security.MaxContentLength)
	if in.Slug != "" && security.ValidateSlug(in.Slug) != nil {
		errs.Add("slug", "must be 3-80 lowercase letters, digits or hyphens")
	}
	if in.CoverImageURL != "" && !strings.HasPrefix(in.CoverImageURL, "/") {
		errs.URL("cover_image_url", in.CoverImageURL)
	}
	if len(in.Tags) > MaxTags {
		errs.Add("tags", fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	return errs.Err()
}

// Apply copies the input onto post and fills the derived fields.
func (in Input) Apply(post *entities.BlogPost) {
	post.Title = in.Title
	post.Content = in.Content
	post.CoverImageURL = in.CoverImageURL
	post.Category = in.Category
	post.Excerpt = in.Excerpt
	if post.Excerpt == "" {
		post.Excerpt = Excerpt(in.Content, ExcerptLength)
	}
	post.ReadingMinutes = ReadingMinutes(in.Content)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.ToLower(security.SanitizeText(tag, maxTagLength))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
