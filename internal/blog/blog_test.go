package blog

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/apperr"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

func TestRender(t *testing.T) {
	out, err := Render("# Planning tips\n\nBook the **venue** first.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Planning tips</h1>")
	assert.Contains(t, out, "<strong>venue</strong>")
	assert.Contains(t, out, "<table>")
}

func TestRender_StripsActiveContent(t *testing.T) {
	out, err := Render("Hello <script>alert(1)</script>\n\n[click](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}

func TestExcerpt(t *testing.T) {
	source := "## Heading\n\nThe quick brown fox jumps over the lazy dog."

	assert.Equal(t, "Heading The quick brown fox jumps over the lazy dog.", Excerpt(source, 0))
	assert.Equal(t, "Heading The quick…", Excerpt(source, 20))
	assert.Equal(t, Excerpt(source, 0), Excerpt(source, 500))
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"Start **early**.", "Start early."},
		{"A [link](https://example.com), then `code`!", "A link, then code!"},
		{"# Peonies\n\nThey are lovely.", "Peonies They are lovely."},
		{"line one\nline two", "line one line two"},
		{"- first\n- second", "first second"},
		{"Hi <b>there</b>\n\n<div>raw</div>", "Hi there"},
		{"Fish &amp; chips", "Fish & chips"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlainText(tt.source), tt.source)
	}
}

func TestReadingMinutes(t *testing.T) {
	assert.Equal(t, 1, ReadingMinutes(""))
	assert.Equal(t, 1, ReadingMinutes("just a few words"))
	assert.Equal(t, 2, ReadingMinutes(strings.Repeat("word ", 201)))
	assert.Equal(t, 3, ReadingMinutes(strings.Repeat("word ", 600)))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"spring-flowers": true, "spring-flowers-2": true}
	exists := func(slug string) (bool, error) { return taken[slug], nil }

	slug, err := UniqueSlug("Spring Flowers!", exists)
	require.NoError(t, err)
	assert.Equal(t, "spring-flowers-3", slug)

	slug, err = UniqueSlug("Autumn", exists)
	require.NoError(t, err)
	assert.Equal(t, "autumn", slug)

	slug, err = UniqueSlug("!!", exists)
	require.NoError(t, err)
	assert.Equal(t, "post", slug)

	boom := errors.New("db down")
	_, err = UniqueSlug("anything", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	_, err = UniqueSlug("always taken", func(string) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, ErrSlugExhausted)
}

func TestUniqueSlug_LongTitleKeepsSuffix(t *testing.T) {
	title := strings.Repeat("abcdefghij", 8)
	slug, err := UniqueSlug(title, func(s string) (bool, error) { return s == title, nil })
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(slug, "-2"))
	assert.LessOrEqual(t, len(slug), 80)
}

func TestApplyStatus(t *testing.T) {
	post := &entities.BlogPost{Status: entities.PostStatusDraft}
	first := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, ApplyStatus(post, entities.PostStatusPublished, first))
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, first, *post.PublishedAt)
	assert.True(t, IsPublic(*post))

	require.NoError(t, ApplyStatus(post, entities.PostStatusDraft, first.Add(time.Hour)))
	assert.False(t, IsPublic(*post))
	assert.Equal(t, first, *post.PublishedAt, "unpublishing keeps the original date")

	require.NoError(t, ApplyStatus(post, entities.PostStatusPublished, first.Add(48*time.Hour)))
	assert.Equal(t, first, *post.PublishedAt, "republishing keeps the original date")

	require.NoError(t, ApplyStatus(post, entities.PostStatusArchived, first))
	assert.False(t, IsPublic(*post))

	assert.Error(t, ApplyStatus(post, "deleted", first))
}

func TestInputNormalizeAndApply(t *testing.T) {
	in := Input{
		Title:    "  Choosing a <em>Venue</em> ",
		Content:  "Start **early**. " + strings.Repeat("More words here. ", 100),
		Category: "Planning",
		Tags:     []string{"Venue", "venue", " budget ", ""},
	}
	require.NoError(t, in.Normalize())
	assert.Equal(t, "Choosing a Venue", in.Title)
	assert.Equal(t, "planning", in.Category)
	assert.Equal(t, []string{"venue", "budget"}, in.Tags)

	var post entities.BlogPost
	in.Apply(&post)
	assert.Equal(t, "Choosing a Venue", post.Title)
	assert.True(t, strings.HasPrefix(post.Excerpt, "Start early."))
	assert.True(t, strings.HasSuffix(post.Excerpt, "…"))
	assert.Equal(t, 2, post.ReadingMinutes)
}

func TestInputNormalize_Invalid(t *testing.T) {
	in := Input{Slug: "Bad Slug", CoverImageURL: "ftp://example.com/x.png"}
	err := in.Normalize()
	require.Error(t, err)
	details := apperr.Classify(err).Details.(map[string]string)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "slug")
	assert.Contains(t, details, "cover_image_url")
}
