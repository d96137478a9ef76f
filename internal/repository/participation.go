package repository

import (
	"context"
	"fmt"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository/dao"
)

var (
	ErrAlreadyJoined  = dao.ErrAlreadyJoined
	ErrNotParticipant = dao.ErrNotParticipant
)

type ParticipationDAO interface {
	Find(ctx context.Context, runID, userID uint) (dao.Participation, error)
	Join(ctx context.Context, runID, userID uint, status string) (dao.Participation, error)
	UpdateStatus(ctx context.Context, runID, userID uint, status string) error
	ListByRun(ctx context.Context, runID uint) ([]dao.ParticipantRow, error)
	HasSharedConfirmedRun(ctx context.Context, userA, userB uint, organizerScoped, pastOnly bool) (bool, error)
}

type ParticipationRepository struct {
	dao ParticipationDAO
}

func NewParticipationRepository(dao ParticipationDAO) *ParticipationRepository {
	return &ParticipationRepository{
		dao: dao,
	}
}

func (r *ParticipationRepository) Find(ctx context.Context, runID, userID uint) (domain.Participation, error) {
	found, err := r.dao.Find(ctx, runID, userID)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.Find -> %w", err)
	}

	return domain.Participation{
		UserID:   found.UserID,
		RunID:    found.RunID,
		Status:   domain.ParticipationStatus(found.Status),
		JoinedAt: found.JoinedAt,
	}, nil
}

func (r *ParticipationRepository) Join(ctx context.Context, runID, userID uint, status domain.ParticipationStatus) (domain.Participation, error) {
	joined, err := r.dao.Join(ctx, runID, userID, string(status))
	if err != nil {
		return domain.Participation{}, fmt.Errorf("r.dao.Join -> %w", err)
	}

	return domain.Participation{
		UserID:   joined.UserID,
		RunID:    joined.RunID,
		Status:   domain.ParticipationStatus(joined.Status),
		JoinedAt: joined.JoinedAt,
	}, nil
}

func (r *ParticipationRepository) UpdateStatus(ctx context.Context, runID, userID uint, status domain.ParticipationStatus) error {
	if err := r.dao.UpdateStatus(ctx, runID, userID, string(status)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *ParticipationRepository) ListByRun(ctx context.Context, runID uint) ([]domain.Participation, error) {
	rows, err := r.dao.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByRun -> %w", err)
	}

	participants := make([]domain.Participation, len(rows))
	for i, row := range rows {
		participants[i] = domain.Participation{
			UserID:         row.UserID,
			RunID:          row.RunID,
			Status:         domain.ParticipationStatus(row.Status),
			JoinedAt:       row.JoinedAt,
			Username:       row.Username,
			ProfilePicture: row.ProfilePicture,
		}
	}

	return participants, nil
}

func (r *ParticipationRepository) HasSharedConfirmedRun(ctx context.Context, userA, userB uint, organizerScoped, pastOnly bool) (bool, error) {
	shared, err := r.dao.HasSharedConfirmedRun(ctx, userA, userB, organizerScoped, pastOnly)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasSharedConfirmedRun -> %w", err)
	}

	return shared, nil
}
