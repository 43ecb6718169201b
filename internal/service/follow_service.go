package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *FollowService {
	return &FollowService{userRepo: userRepo, followRepo: followRepo}
}

// Follow makes viewerID follow the user named targetUsername and reports
// whether a new edge was written. Following an already-followed author or
// oneself changes nothing and is not an error.
func (s *FollowService) Follow(ctx context.Context, viewerID uint, targetUsername string) (*models.User, bool, error) {
	if viewerID == 0 {
		return nil, false, models.NewUnauthorizedError("Log in to follow authors")
	}
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, false, err
	}
	if target.ID == viewerID {
		return target, false, nil
	}

	created, err := s.followRepo.Create(ctx, viewerID, target.ID)
	if err != nil {
		return nil, false, err
	}
	if created {
		observability.RecordFollow("follow")
	}
	return target, created, nil
}

// Unfollow removes the edge viewerID -> targetUsername. A missing user or
// a missing edge is NotFound.
func (s *FollowService) Unfollow(ctx context.Context, viewerID uint, targetUsername string) (*models.User, error) {
	if viewerID == 0 {
		return nil, models.NewUnauthorizedError("Log in to unfollow authors")
	}
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if err := s.followRepo.Delete(ctx, viewerID, target.ID); err != nil {
		return nil, err
	}
	observability.RecordFollow("unfollow")
	return target, nil
}

// IsFollowing reports whether viewerID follows authorID. Anonymous viewers
// follow nobody.
func (s *FollowService) IsFollowing(ctx context.Context, viewerID, authorID uint) (bool, error) {
	if viewerID == 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, viewerID, authorID)
}
