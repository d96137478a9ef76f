package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository"
)

var (
	ErrRunNotFound             = repository.ErrRunNotFound
	ErrAlreadyJoined           = repository.ErrAlreadyJoined
	ErrNotParticipant          = repository.ErrNotParticipant
	ErrRunDateInPast           = errors.New("run date must be in the future")
	ErrNotOrganizer            = errors.New("only the organizer may modify this run")
	ErrOrganizerCannotLeave    = errors.New("the organizer cannot leave their own run")
	ErrPrivateRun              = errors.New("no access to this private run")
	ErrInvalidTransition       = errors.New("invalid participation status transition")
	ErrNotConfirmedParticipant = errors.New("only confirmed participants may rate this run")
)

type RunRepository interface {
	Create(ctx context.Context, run domain.Run) (domain.Run, error)
	FindByID(ctx context.Context, id uint) (domain.Run, error)
	List(ctx context.Context, filters domain.RunFilters, authenticated bool) ([]domain.Run, error)
	ListAll(ctx context.Context) ([]domain.Run, error)
	Update(ctx context.Context, run domain.Run) (domain.Run, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type RunParticipationRepository interface {
	Find(ctx context.Context, runID, userID uint) (domain.Participation, error)
	Join(ctx context.Context, runID, userID uint, status domain.ParticipationStatus) (domain.Participation, error)
	UpdateStatus(ctx context.Context, runID, userID uint, status domain.ParticipationStatus) error
	ListByRun(ctx context.Context, runID uint) ([]domain.Participation, error)
}

type RunRatingRepository interface {
	UpsertRunRating(ctx context.Context, rating domain.RunRating) (domain.RunRating, error)
	ListByRun(ctx context.Context, runID uint) ([]domain.RunRating, error)
}

type RunService struct {
	repo              RunRepository
	participationRepo RunParticipationRepository
	ratingRepo        RunRatingRepository
}

func NewRunService(repo RunRepository, participationRepo RunParticipationRepository, ratingRepo RunRatingRepository) *RunService {
	return &RunService{
		repo:              repo,
		participationRepo: participationRepo,
		ratingRepo:        ratingRepo,
	}
}

// CreateRun inserts the run with the organizer as a confirmed
// participant from the start.
func (s *RunService) CreateRun(ctx context.Context, run domain.Run) (domain.Run, error) {
	if !run.Date.After(time.Now()) {
		return domain.Run{}, ErrRunDateInPast
	}

	created, err := s.repo.Create(ctx, run)
	if err != nil {
		return domain.Run{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *RunService) GetRuns(ctx context.Context, filters domain.RunFilters, authenticated bool) ([]domain.Run, error) {
	runs, err := s.repo.List(ctx, filters, authenticated)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return runs, nil
}

// GetRun returns the detail view. requesterID zero means an anonymous
// requester. A private run is visible only to its organizer or to a
// user holding any participation row for it, whatever the status.
func (s *RunService) GetRun(ctx context.Context, runID, requesterID uint) (domain.RunDetail, error) {
	run, err := s.repo.FindByID(ctx, runID)
	if err != nil {
		return domain.RunDetail{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if run.IsPrivate && requesterID != run.OrganizerID {
		if requesterID == 0 {
			return domain.RunDetail{}, ErrPrivateRun
		}
		if _, err := s.participationRepo.Find(ctx, runID, requesterID); err != nil {
			if errors.Is(err, repository.ErrNotParticipant) {
				return domain.RunDetail{}, ErrPrivateRun
			}

			return domain.RunDetail{}, fmt.Errorf("s.participationRepo.Find -> %w", err)
		}
	}

	participants, err := s.participationRepo.ListByRun(ctx, runID)
	if err != nil {
		return domain.RunDetail{}, fmt.Errorf("s.participationRepo.ListByRun -> %w", err)
	}

	ratings, err := s.ratingRepo.ListByRun(ctx, runID)
	if err != nil {
		return domain.RunDetail{}, fmt.Errorf("s.ratingRepo.ListByRun -> %w", err)
	}

	return domain.RunDetail{
		Run:          run,
		Participants: participants,
		Ratings:      ratings,
	}, nil
}

func (s *RunService) GetAllRuns(ctx context.Context) ([]domain.Run, error) {
	runs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListAll -> %w", err)
	}

	return runs, nil
}

func (s *RunService) UpdateRun(ctx context.Context, runID, userID uint, update domain.RunUpdate) (domain.Run, error) {
	run, err := s.repo.FindByID(ctx, runID)
	if err != nil {
		return domain.Run{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if run.OrganizerID != userID {
		return domain.Run{}, ErrNotOrganizer
	}

	if update.Title != nil {
		run.Title = *update.Title
	}
	if update.Description != nil {
		run.Description = *update.Description
	}
	if update.Date != nil {
		if !update.Date.After(time.Now()) {
			return domain.Run{}, ErrRunDateInPast
		}
		run.Date = *update.Date
	}
	if update.Location != nil {
		run.Location = *update.Location
	}
	if update.Distance != nil {
		run.Distance = *update.Distance
	}
	if update.Level != nil {
		run.Level = *update.Level
	}
	if update.IsPrivate != nil {
		run.IsPrivate = *update.IsPrivate
	}

	updated, err := s.repo.Update(ctx, run)
	if err != nil {
		return domain.Run{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteRun removes the run and its dependents. Allowed for the
// organizer or an admin.
func (s *RunService) DeleteRun(ctx context.Context, runID uint, requester domain.User) error {
	run, err := s.repo.FindByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if run.OrganizerID != requester.ID && requester.Role != domain.RoleAdmin {
		return ErrNotOrganizer
	}

	if err := s.repo.DeleteCascade(ctx, runID); err != nil {
		return fmt.Errorf("s.repo.DeleteCascade -> %w", err)
	}

	return nil
}

// Join registers the user for the run at pending, reactivating a
// cancelled row instead of inserting a duplicate.
func (s *RunService) Join(ctx context.Context, runID, userID uint) (domain.Participation, error) {
	if _, err := s.repo.FindByID(ctx, runID); err != nil {
		return domain.Participation{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	joined, err := s.participationRepo.Join(ctx, runID, userID, domain.ParticipationPending)
	if err != nil {
		return domain.Participation{}, fmt.Errorf("s.participationRepo.Join -> %w", err)
	}

	return joined, nil
}

// Leave transitions the participation to cancelled. The row survives as
// the audit trail the eligibility engine reads; nothing is deleted.
func (s *RunService) Leave(ctx context.Context, runID, userID uint) error {
	run, err := s.repo.FindByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	participation, err := s.participationRepo.Find(ctx, runID, userID)
	if err != nil {
		return fmt.Errorf("s.participationRepo.Find -> %w", err)
	}

	if run.OrganizerID == userID {
		return ErrOrganizerCannotLeave
	}

	if !participation.Status.CanTransitionTo(domain.ParticipationCancelled) {
		return ErrNotParticipant
	}

	if err := s.participationRepo.UpdateStatus(ctx, runID, userID, domain.ParticipationCancelled); err != nil {
		return fmt.Errorf("s.participationRepo.UpdateStatus -> %w", err)
	}

	return nil
}

// SetParticipantStatus lets the organizer confirm or cancel a
// participant, validated against the transition table.
func (s *RunService) SetParticipantStatus(ctx context.Context, runID, organizerID, targetUserID uint, status domain.ParticipationStatus) error {
	run, err := s.repo.FindByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if run.OrganizerID != organizerID {
		return ErrNotOrganizer
	}
	if run.OrganizerID == targetUserID {
		return ErrOrganizerCannotLeave
	}

	participation, err := s.participationRepo.Find(ctx, runID, targetUserID)
	if err != nil {
		return fmt.Errorf("s.participationRepo.Find -> %w", err)
	}

	if !participation.Status.CanTransitionTo(status) {
		return ErrInvalidTransition
	}

	if err := s.participationRepo.UpdateStatus(ctx, runID, targetUserID, status); err != nil {
		return fmt.Errorf("s.participationRepo.UpdateStatus -> %w", err)
	}

	return nil
}

// RateRun records a confirmed participant's rating of the run, one live
// rating per (user, run), updated in place on re-rate.
func (s *RunService) RateRun(ctx context.Context, userID, runID uint, rating int, comment string) (domain.RunRating, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return domain.RunRating{}, ErrRatingOutOfRange
	}

	if _, err := s.repo.FindByID(ctx, runID); err != nil {
		return domain.RunRating{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	participation, err := s.participationRepo.Find(ctx, runID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotParticipant) {
			return domain.RunRating{}, ErrNotConfirmedParticipant
		}

		return domain.RunRating{}, fmt.Errorf("s.participationRepo.Find -> %w", err)
	}
	if participation.Status != domain.ParticipationConfirmed {
		return domain.RunRating{}, ErrNotConfirmedParticipant
	}

	saved, err := s.ratingRepo.UpsertRunRating(ctx, domain.RunRating{
		UserID:  userID,
		RunID:   runID,
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		return domain.RunRating{}, fmt.Errorf("s.ratingRepo.UpsertRunRating -> %w", err)
	}

	return saved, nil
}
