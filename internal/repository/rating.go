package repository

import (
	"context"
	"fmt"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository/dao"
)

type RatingDAO interface {
	UpsertUserRating(ctx context.Context, rating dao.UserRating) (dao.UserRating, error)
	UpsertRunRating(ctx context.Context, rating dao.RunRating) (dao.RunRating, error)
	ListReceivedByUser(ctx context.Context, userID uint) ([]dao.UserRatingRow, error)
	ListByRun(ctx context.Context, runID uint) ([]dao.RunRatingRow, error)
}

type RatingRepository struct {
	dao RatingDAO
}

func NewRatingRepository(dao RatingDAO) *RatingRepository {
	return &RatingRepository{
		dao: dao,
	}
}

func (r *RatingRepository) UpsertUserRating(ctx context.Context, rating domain.UserRating) (domain.UserRating, error) {
	saved, err := r.dao.UpsertUserRating(ctx, dao.UserRating{
		RaterID: rating.RaterID,
		RateeID: rating.RateeID,
		Rating:  rating.Rating,
		Comment: rating.Comment,
	})
	if err != nil {
		return domain.UserRating{}, fmt.Errorf("r.dao.UpsertUserRating -> %w", err)
	}

	rating.ID = saved.ID
	rating.CreatedAt = saved.CreatedAt

	return rating, nil
}

func (r *RatingRepository) UpsertRunRating(ctx context.Context, rating domain.RunRating) (domain.RunRating, error) {
	saved, err := r.dao.UpsertRunRating(ctx, dao.RunRating{
		UserID:  rating.UserID,
		RunID:   rating.RunID,
		Rating:  rating.Rating,
		Comment: rating.Comment,
	})
	if err != nil {
		return domain.RunRating{}, fmt.Errorf("r.dao.UpsertRunRating -> %w", err)
	}

	rating.ID = saved.ID
	rating.CreatedAt = saved.CreatedAt

	return rating, nil
}

func (r *RatingRepository) ListReceivedByUser(ctx context.Context, userID uint) ([]domain.UserRating, error) {
	rows, err := r.dao.ListReceivedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListReceivedByUser -> %w", err)
	}

	ratings := make([]domain.UserRating, len(rows))
	for i, row := range rows {
		ratings[i] = domain.UserRating{
			ID:            row.ID,
			RaterID:       row.RaterID,
			RateeID:       row.RateeID,
			Rating:        row.Rating,
			Comment:       row.Comment,
			CreatedAt:     row.CreatedAt,
			RaterUsername: row.RaterUsername,
			RaterPicture:  row.RaterPicture,
		}
	}

	return ratings, nil
}

func (r *RatingRepository) ListByRun(ctx context.Context, runID uint) ([]domain.RunRating, error) {
	rows, err := r.dao.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByRun -> %w", err)
	}

	ratings := make([]domain.RunRating, len(rows))
	for i, row := range rows {
		ratings[i] = domain.RunRating{
			ID:        row.ID,
			UserID:    row.UserID,
			RunID:     row.RunID,
			Rating:    row.Rating,
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
			Username:  row.Username,
		}
	}

	return ratings, nil
}
