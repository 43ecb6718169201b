package repository

import (
	"context"

	"yatube/internal/cache"
	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository reads groups and creates them out-of-band.
type GroupRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Group, error)
	// Ensure creates group unless its slug exists, and returns the stored row.
	Ensure(ctx context.Context, group *models.Group) (*models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := cache.Aside(ctx, cache.GroupKey(slug), &group, cache.GroupTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
			return lookupError(err, "Group", slug)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) Ensure(ctx context.Context, group *models.Group) (*models.Group, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(group).Error
	if err != nil && !isUniqueViolation(err) {
		return nil, models.NewInternalError(err)
	}

	var stored models.Group
	if err := db.Where("slug = ?", group.Slug).First(&stored).Error; err != nil {
		return nil, lookupError(err, "Group", group.Slug)
	}
	cache.InvalidateGroup(ctx, stored.Slug)
	return &stored, nil
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := readDB(r.db).WithContext(ctx).Order("title ASC").Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}
