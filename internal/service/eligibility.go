package service

import (
	"context"
	"fmt"
)

// EligibilityParticipationRepository is the slice of the participation
// store the eligibility engine needs.
type EligibilityParticipationRepository interface {
	HasSharedConfirmedRun(ctx context.Context, userA, userB uint, organizerScoped, pastOnly bool) (bool, error)
}

// EligibilityService derives whether two users may message or rate each
// other from their shared run history. Both checks hit the store on
// every call; a cancelled participation silently revokes eligibility
// for new actions without retracting anything already sent or rated.
type EligibilityService struct {
	participationRepo EligibilityParticipationRepository
}

func NewEligibilityService(participationRepo EligibilityParticipationRepository) *EligibilityService {
	return &EligibilityService{
		participationRepo: participationRepo,
	}
}

// CanCommunicate is true iff the two users hold confirmed
// participations in a common run organized by one of them. It gates
// both sending a message and reading a conversation.
func (s *EligibilityService) CanCommunicate(ctx context.Context, userA, userB uint) (bool, error) {
	shared, err := s.participationRepo.HasSharedConfirmedRun(ctx, userA, userB, true, false)
	if err != nil {
		return false, fmt.Errorf("s.participationRepo.HasSharedConfirmedRun -> %w", err)
	}

	return shared, nil
}

// CanRate is true iff the two users hold confirmed participations in a
// common run whose date has passed. Unlike CanCommunicate the run must
// be over, and the organizer scoping does not apply.
func (s *EligibilityService) CanRate(ctx context.Context, userA, userB uint) (bool, error) {
	shared, err := s.participationRepo.HasSharedConfirmedRun(ctx, userA, userB, false, true)
	if err != nil {
		return false, fmt.Errorf("s.participationRepo.HasSharedConfirmedRun -> %w", err)
	}

	return shared, nil
}
