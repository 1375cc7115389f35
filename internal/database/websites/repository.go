// Package websites provides database operations for wedding websites and the
// RSVP submissions they collect.
package websites

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/database"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

// RSVPWithSite is an RSVP submission joined with the website it was sent to.
type RSVPWithSite struct {
	entities.RSVPResponse
	WebsiteSlug  string `json:"website_slug"`
	WebsiteTitle string `json:"website_title"`
}

// Repository handles wedding website database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new websites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByUser(userID uint) (*entities.WeddingWebsite, error) {
	var site entities.WeddingWebsite
	if err := r.db.Where("user_id = ?", userID).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *Repository) GetBySlug(slug string) (*entities.WeddingWebsite, error) {
	var site entities.WeddingWebsite
	if err := r.db.Where("slug = ?", slug).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// Save creates the user's website or replaces the stored one.
func (r *Repository) Save(site *entities.WeddingWebsite) error {
	if site.ID == 0 {
		return r.db.Create(site).Error
	}
	return database.UpdateOwned(r.db, site, site.UserID)
}

// SlugTaken reports whether slug belongs to a website not owned by userID.
func (r *Repository) SlugTaken(slug string, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.WeddingWebsite{}).
		Where("slug = ? AND user_id <> ?", slug, userID).
		Count(&count).Error
	return count > 0, err
}

// SetPublished flips the published flag. PublishedAt is set on first publish only.
func (r *Repository) SetPublished(userID uint, published bool, at time.Time) (*entities.WeddingWebsite, error) {
	site, err := r.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"is_published": published}
	if published && site.PublishedAt == nil {
		updates["published_at"] = at
		site.PublishedAt = &at
	}
	if err := r.db.Model(site).Updates(updates).Error; err != nil {
		return nil, err
	}
	site.IsPublished = published
	return site, nil
}

func (r *Repository) IncrementViews(id uint) error {
	return r.db.Model(&entities.WeddingWebsite{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *Repository) CountPublished() (int64, error) {
	var count int64
	err := r.db.Model(&entities.WeddingWebsite{}).Where("is_published = ?", true).Count(&count).Error
	return count, err
}

// --- RSVP responses ---

func (r *Repository) CreateRSVP(resp *entities.RSVPResponse) error {
	return r.db.Create(resp).Error
}

func (r *Repository) ListRSVPs(websiteID uint, limit, offset int) ([]entities.RSVPResponse, int64, error) {
	var responses []entities.RSVPResponse
	var total int64

	q := r.db.Model(&entities.RSVPResponse{}).Where("website_id = ?", websiteID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset = page(limit, offset)
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&responses).Error
	return responses, total, err
}

// ListAllRSVPs returns submissions across every website, newest first.
func (r *Repository) ListAllRSVPs(limit, offset int) ([]RSVPWithSite, int64, error) {
	var responses []RSVPWithSite
	var total int64

	if err := r.db.Model(&entities.RSVPResponse{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset = page(limit, offset)
	err := r.db.Table("rsvp_responses").
		Select("rsvp_responses.*, wedding_websites.slug AS website_slug, wedding_websites.title AS website_title").
		Joins("LEFT JOIN wedding_websites ON wedding_websites.id = rsvp_responses.website_id").
		Order("rsvp_responses.created_at DESC, rsvp_responses.id DESC").
		Limit(limit).Offset(offset).
		Scan(&responses).Error
	return responses, total, err
}

func (r *Repository) CountRSVPs() (int64, error) {
	var count int64
	err := r.db.Model(&entities.RSVPResponse{}).Count(&count).Error
	return count, err
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
