// Package blog provides database operations for blog posts and their tags.
package blog

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

// PostFilter narrows ListPosts. Zero values mean "any".
type PostFilter struct {
	Status   entities.PostStatus
	Category string
	Tag      string
	Search   string
	AuthorID uint
	Limit    int
	Offset   int
}

// Repository handles blog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new blog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListPosts returns one page of posts and the total matching count.
// Published posts are ordered by publication date, everything else by last update.
func (r *Repository) ListPosts(filter PostFilter) ([]entities.BlogPost, int64, error) {
	var posts []entities.BlogPost
	var total int64

	q := r.db.Model(&entities.BlogPost{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		q = q.Where("id IN (?)", r.db.Table("blog_post_tags").
			Select("blog_post_tags.blog_post_id").
			Joins("JOIN blog_tags ON blog_tags.id = blog_post_tags.blog_tag_id").
			Where("blog_tags.name = ?", strings.ToLower(tag)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?", like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	order := "updated_at DESC"
	if filter.Status == entities.PostStatusPublished {
		order = "published_at DESC"
	}

	err := q.Preload("Tags").Order(order).Order("id DESC").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, total, err
}

func (r *Repository) GetPostByID(id uint) (*entities.BlogPost, error) {
	var post entities.BlogPost
	if err := r.db.Preload("Tags").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Repository) GetPostBySlug(slug string) (*entities.BlogPost, error) {
	var post entities.BlogPost
	if err := r.db.Preload("Tags").Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// SlugExists reports whether slug is used by a post other than excludeID.
func (r *Repository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&entities.BlogPost{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// CreatePost inserts the post and attaches tagNames, creating tags as needed.
func (r *Repository) CreatePost(post *entities.BlogPost, tagNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(post).Error; err != nil {
			return err
		}
		return replaceTags(tx, post, tagNames)
	})
}

// UpdatePost saves every column of the post and replaces its tags.
func (r *Repository) UpdatePost(post *entities.BlogPost, tagNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(post).Select("*").Omit("id", "author_id", "created_at", "Tags").Updates(post)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return replaceTags(tx, post, tagNames)
	})
}

func (r *Repository) DeletePost(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		post := &entities.BlogPost{ID: id}
		if err := tx.Model(post).Association("Tags").Clear(); err != nil {
			return err
		}
		result := tx.Delete(post)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *Repository) IncrementViews(id uint) error {
	return r.db.Model(&entities.BlogPost{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *Repository) CountByStatus(status entities.PostStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.BlogPost{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// ListTags returns every tag that is attached to at least one published post.
func (r *Repository) ListTags() ([]entities.BlogTag, error) {
	var tags []entities.BlogTag
	err := r.db.Where("id IN (?)", r.db.Table("blog_post_tags").
		Select("blog_post_tags.blog_tag_id").
		Joins("JOIN blog_posts ON blog_posts.id = blog_post_tags.blog_post_id").
		Where("blog_posts.status = ?", entities.PostStatusPublished)).
		Order("name ASC").Find(&tags).Error
	return tags, err
}

func replaceTags(tx *gorm.DB, post *entities.BlogPost, tagNames []string) error {
	tags := make([]entities.BlogTag, 0, len(tagNames))
	seen := make(map[string]bool, len(tagNames))
	for _, name := range tagNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag := entities.BlogTag{Name: name}
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	association := tx.Model(post).Association("Tags")
	var err error
	if len(tags) == 0 {
		err = association.Clear()
	} else {
		err = association.Replace(tags)
	}
	if err != nil {
		return err
	}
	post.Tags = tags
	return nil
}
