package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runshare/runshare-api/internal/domain"
)

func TestEligibilityService_CanCommunicate(t *testing.T) {
	runs := newFakeRunRepo()
	participations := newFakeParticipationRepo(runs)
	svc := NewEligibilityService(participations)
	ctx := context.Background()

	// Run organized by user 1, both confirmed.
	organized := runs.add(domain.Run{OrganizerID: 1, Date: time.Now().Add(24 * time.Hour)})
	participations.set(organized.ID, 1, domain.ParticipationConfirmed)
	participations.set(organized.ID, 2, domain.ParticipationConfirmed)

	ok, err := svc.CanCommunicate(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// The check is symmetric.
	ok, err = svc.CanCommunicate(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEligibilityService_CanCommunicate_ThirdPartyRun(t *testing.T) {
	runs := newFakeRunRepo()
	participations := newFakeParticipationRepo(runs)
	svc := NewEligibilityService(participations)
	ctx := context.Background()

	// Users 2 and 3 share a run, but user 1 organized it. Neither of
	// them may message the other; the link must run through the
	// organizer.
	run := runs.add(domain.Run{OrganizerID: 1, Date: time.Now().Add(24 * time.Hour)})
	participations.set(run.ID, 1, domain.ParticipationConfirmed)
	participations.set(run.ID, 2, domain.ParticipationConfirmed)
	participations.set(run.ID, 3, domain.ParticipationConfirmed)

	ok, err := svc.CanCommunicate(ctx, 2, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanCommunicate(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEligibilityService_CanCommunicate_RequiresConfirmed(t *testing.T) {
	runs := newFakeRunRepo()
	participations := newFakeParticipationRepo(runs)
	svc := NewEligibilityService(participations)
	ctx := context.Background()

	run := runs.add(domain.Run{OrganizerID: 1, Date: time.Now().Add(24 * time.Hour)})
	participations.set(run.ID, 1, domain.ParticipationConfirmed)
	participations.set(run.ID, 2, domain.ParticipationPending)

	ok, err := svc.CanCommunicate(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	// Cancelling revokes a previously valid link.
	participations.set(run.ID, 2, domain.ParticipationConfirmed)
	ok, _ = svc.CanCommunicate(ctx, 1, 2)
	assert.True(t, ok)

	participations.set(run.ID, 2, domain.ParticipationCancelled)
	ok, _ = svc.CanCommunicate(ctx, 1, 2)
	assert.False(t, ok)
}

func TestEligibilityService_CanRate_PastOnly(t *testing.T) {
	runs := newFakeRunRepo()
	participations := newFakeParticipationRepo(runs)
	svc := NewEligibilityService(participations)
	ctx := context.Background()

	future := runs.add(domain.Run{OrganizerID: 1, Date: time.Now().Add(24 * time.Hour)})
	participations.set(future.ID, 1, domain.ParticipationConfirmed)
	participations.set(future.ID, 2, domain.ParticipationConfirmed)

	// The shared run has not happened yet.
	ok, err := svc.CanRate(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	past := runs.add(domain.Run{OrganizerID: 1, Date: time.Now().Add(-24 * time.Hour)})
	participations.set(past.ID, 1, domain.ParticipationConfirmed)
	participations.set(past.ID, 2, domain.ParticipationConfirmed)

	ok, err = svc.CanRate(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEligibilityService_CanRate_NoOrganizerScoping(t *testing.T) {
	runs := newFakeRunRepo()
	participations := newFakeParticipationRepo(runs)
	svc := NewEligibilityService(participations)
	ctx := context.Background()

	// Two plain participants of a finished run may rate each other even
	// though neither organized it.
	run := runs.add(domain.Run{OrganizerID: 1, Date: time.Now().Add(-24 * time.Hour)})
	participations.set(run.ID, 2, domain.ParticipationConfirmed)
	participations.set(run.ID, 3, domain.ParticipationConfirmed)

	ok, err := svc.CanRate(ctx, 2, 3)
	require.NoError(t, err)
	assert.True(t, ok)
}
