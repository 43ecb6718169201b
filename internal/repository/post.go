package repository

import (
	"context"

	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postOrder is the listing order: newest first, later inserts first on ties.
const postOrder = "posts.pub_date DESC, posts.id DESC"

// PostFilter narrows a listing. Zero fields do not filter.
type PostFilter struct {
	GroupID  *uint
	AuthorID *uint
	// FollowedBy keeps posts whose author the given user follows.
	FollowedBy uint
}

func (f PostFilter) scope(db *gorm.DB) *gorm.DB {
	if f.GroupID != nil {
		db = db.Where("posts.group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		db = db.Where("posts.author_id = ?", *f.AuthorID)
	}
	if f.FollowedBy != 0 {
		db = db.Where("posts.author_id IN (SELECT author_id FROM follows WHERE user_id = ?)", f.FollowedBy)
	}
	return db
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, filter PostFilter) (int64, error)
	// UpdateContent writes text, group_id and image only, then reloads post
	// with its author and group from the primary.
	UpdateContent(ctx context.Context, post *models.Post) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(post, post.ID).Error
	if err != nil {
		return lookupError(err, "Post", post.ID)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db).WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, limit)
	err := readDB(r.db).WithContext(ctx).
		Scopes(filter.scope).
		Preload("Author").
		Preload("Group").
		Order(postOrder).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var n int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Scopes(filter.scope).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}

	var stored models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&stored, post.ID).Error
	if err != nil {
		return lookupError(err, "Post", post.ID)
	}
	*post = stored
	return nil
}
