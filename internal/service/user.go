package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository"
)

const profileRunsLimit = 10

var (
	ErrSelfRating        = errors.New("you cannot rate yourself")
	ErrRatingOutOfRange  = errors.New("rating must be between 1 and 5")
	ErrNotEligibleToRate = errors.New("you can only rate users after a shared run has taken place")
	ErrCannotDeleteSelf  = errors.New("admins cannot delete their own account")
	ErrEmptyUpdate       = errors.New("nothing to update")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	UpdateProfilePicture(ctx context.Context, id uint, path string) error
	ListWithStats(ctx context.Context) ([]domain.UserWithStats, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type ProfileRunRepository interface {
	ListOrganizedBy(ctx context.Context, userID uint, limit int) ([]domain.Run, error)
	ListParticipatedBy(ctx context.Context, userID uint, limit int) ([]domain.Run, error)
}

type UserRatingRepository interface {
	UpsertUserRating(ctx context.Context, rating domain.UserRating) (domain.UserRating, error)
	ListReceivedByUser(ctx context.Context, userID uint) ([]domain.UserRating, error)
}

// RatingEligibilityChecker is the slice of the eligibility engine user
// rating needs.
type RatingEligibilityChecker interface {
	CanRate(ctx context.Context, userA, userB uint) (bool, error)
}

type UserService struct {
	repo        UserRepository
	runRepo     ProfileRunRepository
	ratingRepo  UserRatingRepository
	eligibility RatingEligibilityChecker
}

func NewUserService(repo UserRepository, runRepo ProfileRunRepository, ratingRepo UserRatingRepository, eligibility RatingEligibilityChecker) *UserService {
	return &UserService{
		repo:        repo,
		runRepo:     runRepo,
		ratingRepo:  ratingRepo,
		eligibility: eligibility,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// GetProfile assembles the public profile view: the user, the ratings
// they received with the computed average, and their recent organized
// and participated runs.
func (s *UserService) GetProfile(ctx context.Context, id uint) (domain.UserProfile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	ratings, err := s.ratingRepo.ListReceivedByUser(ctx, id)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("s.ratingRepo.ListReceivedByUser -> %w", err)
	}

	var average float64
	if len(ratings) > 0 {
		var sum int
		for _, r := range ratings {
			sum += r.Rating
		}
		average = float64(sum) / float64(len(ratings))
	}

	organized, err := s.runRepo.ListOrganizedBy(ctx, id, profileRunsLimit)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("s.runRepo.ListOrganizedBy -> %w", err)
	}

	participated, err := s.runRepo.ListParticipatedBy(ctx, id, profileRunsLimit)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("s.runRepo.ListParticipatedBy -> %w", err)
	}

	return domain.UserProfile{
		User:             user,
		AverageRating:    average,
		Ratings:          ratings,
		OrganizedRuns:    organized,
		ParticipatedRuns: participated,
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, update domain.ProfileUpdate) (domain.User, error) {
	if update.IsEmpty() {
		return domain.User{}, ErrEmptyUpdate
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if update.Username != nil && *update.Username != user.Username {
		existing, err := s.repo.FindByUsername(ctx, *update.Username)
		if err == nil && existing.ID != id {
			return domain.User{}, ErrUserUsernameExists
		}
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, fmt.Errorf("s.repo.FindByUsername -> %w", err)
		}
		user.Username = *update.Username
	}
	if update.City != nil {
		user.City = *update.City
	}
	if update.Level != nil {
		user.Level = *update.Level
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
		}
		user.Password = string(hash)
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *UserService) UpdateProfilePicture(ctx context.Context, id uint, path string) error {
	if err := s.repo.UpdateProfilePicture(ctx, id, path); err != nil {
		return fmt.Errorf("s.repo.UpdateProfilePicture -> %w", err)
	}

	return nil
}

// RateUser records a directed rating. Self-rating is blocked outright,
// the rating must be within bounds, and the rater must share a finished
// run with the ratee. Re-rating the same user updates the existing edge.
func (s *UserService) RateUser(ctx context.Context, raterID, rateeID uint, rating int, comment string) (domain.UserRating, error) {
	if raterID == rateeID {
		return domain.UserRating{}, ErrSelfRating
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.UserRating{}, ErrRatingOutOfRange
	}

	if _, err := s.repo.FindByID(ctx, rateeID); err != nil {
		return domain.UserRating{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	eligible, err := s.eligibility.CanRate(ctx, raterID, rateeID)
	if err != nil {
		return domain.UserRating{}, fmt.Errorf("s.eligibility.CanRate -> %w", err)
	}
	if !eligible {
		return domain.UserRating{}, ErrNotEligibleToRate
	}

	saved, err := s.ratingRepo.UpsertUserRating(ctx, domain.UserRating{
		RaterID: raterID,
		RateeID: rateeID,
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		return domain.UserRating{}, fmt.Errorf("s.ratingRepo.UpsertUserRating -> %w", err)
	}

	return saved, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.UserWithStats, error) {
	users, err := s.repo.ListWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListWithStats -> %w", err)
	}

	return users, nil
}

// DeleteUser removes an account and all dependent rows. An admin may
// not delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, adminID, targetID uint) error {
	if adminID == targetID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.repo.DeleteCascade(ctx, targetID); err != nil {
		return fmt.Errorf("s.repo.DeleteCascade -> %w", err)
	}

	return nil
}
