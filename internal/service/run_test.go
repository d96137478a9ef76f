package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runshare/runshare-api/internal/domain"
)

func newRunServiceForTest() (*RunService, *fakeRunRepo, *fakeParticipationRepo, *fakeRatingRepo) {
	runs := newFakeRunRepo()
	participations := newFakeParticipationRepo(runs)
	ratings := newFakeRatingRepo()

	return NewRunService(runs, participations, ratings), runs, participations, ratings
}

func futureRun(organizerID uint) domain.Run {
	return domain.Run{
		Title:       "Morning 10K",
		Date:        time.Now().Add(48 * time.Hour),
		Location:    "Paris",
		Distance:    10,
		Level:       domain.LevelIntermediate,
		OrganizerID: organizerID,
	}
}

func TestRunService_CreateRun(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, uint(1), created.OrganizerID)
}

func TestRunService_CreateRun_PastDate(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()

	run := futureRun(1)
	run.Date = time.Now().Add(-time.Hour)

	_, err := svc.CreateRun(context.Background(), run)
	assert.ErrorIs(t, err, ErrRunDateInPast)
}

func TestRunService_GetRun_PrivateVisibility(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	run := futureRun(1)
	run.IsPrivate = true
	created, err := svc.CreateRun(ctx, run)
	require.NoError(t, err)
	participations.set(created.ID, 1, domain.ParticipationConfirmed)
	participations.set(created.ID, 2, domain.ParticipationPending)

	// Anonymous requester.
	_, err = svc.GetRun(ctx, created.ID, 0)
	assert.ErrorIs(t, err, ErrPrivateRun)

	// Unrelated user.
	_, err = svc.GetRun(ctx, created.ID, 99)
	assert.ErrorIs(t, err, ErrPrivateRun)

	// Organizer.
	detail, err := svc.GetRun(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.Len(t, detail.Participants, 2)

	// A pending participant still sees the run.
	_, err = svc.GetRun(ctx, created.ID, 2)
	assert.NoError(t, err)
}

func TestRunService_GetRun_NotFound(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()

	_, err := svc.GetRun(context.Background(), 42, 1)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunService_UpdateRun(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)

	newTitle := "Evening 10K"
	newDistance := 12.5

	updated, err := svc.UpdateRun(ctx, created.ID, 1, domain.RunUpdate{
		Title:    &newTitle,
		Distance: &newDistance,
	})
	require.NoError(t, err)
	assert.Equal(t, "Evening 10K", updated.Title)
	assert.Equal(t, 12.5, updated.Distance)
	assert.Equal(t, "Paris", updated.Location)
}

func TestRunService_UpdateRun_NotOrganizer(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)

	newTitle := "Hijacked"
	_, err = svc.UpdateRun(ctx, created.ID, 2, domain.RunUpdate{Title: &newTitle})
	assert.ErrorIs(t, err, ErrNotOrganizer)
}

func TestRunService_UpdateRun_PastDate(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	_, err = svc.UpdateRun(ctx, created.ID, 1, domain.RunUpdate{Date: &past})
	assert.ErrorIs(t, err, ErrRunDateInPast)
}

func TestRunService_DeleteRun(t *testing.T) {
	svc, runs, _, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)

	// Neither organizer nor admin.
	err = svc.DeleteRun(ctx, created.ID, domain.User{ID: 2, Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrNotOrganizer)

	// An admin may delete anyone's run.
	err = svc.DeleteRun(ctx, created.ID, domain.User{ID: 3, Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, []uint{created.ID}, runs.deleted)
}

func TestRunService_Join_LandsAtPending(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)

	joined, err := svc.Join(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationPending, joined.Status)

	p, err := participations.Find(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationPending, p.Status)
}

func TestRunService_Join_Duplicate(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)

	_, err = svc.Join(ctx, created.ID, 2)
	require.NoError(t, err)

	_, err = svc.Join(ctx, created.ID, 2)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestRunService_Join_ReactivatesCancelled(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 2, domain.ParticipationCancelled)

	joined, err := svc.Join(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationPending, joined.Status)
}

func TestRunService_Leave(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 2, domain.ParticipationConfirmed)

	require.NoError(t, svc.Leave(ctx, created.ID, 2))

	// The row survives as cancelled rather than being deleted.
	p, err := participations.Find(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationCancelled, p.Status)
}

func TestRunService_Leave_Organizer(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 1, domain.ParticipationConfirmed)

	err = svc.Leave(ctx, created.ID, 1)
	assert.ErrorIs(t, err, ErrOrganizerCannotLeave)
}

func TestRunService_Leave_AlreadyCancelled(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 2, domain.ParticipationCancelled)

	err = svc.Leave(ctx, created.ID, 2)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestRunService_SetParticipantStatus(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 2, domain.ParticipationPending)

	require.NoError(t, svc.SetParticipantStatus(ctx, created.ID, 1, 2, domain.ParticipationConfirmed))

	p, err := participations.Find(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationConfirmed, p.Status)
}

func TestRunService_SetParticipantStatus_Errors(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 1, domain.ParticipationConfirmed)
	participations.set(created.ID, 2, domain.ParticipationCancelled)

	// Only the organizer may manage participants.
	err = svc.SetParticipantStatus(ctx, created.ID, 5, 2, domain.ParticipationConfirmed)
	assert.ErrorIs(t, err, ErrNotOrganizer)

	// The organizer's own row is off limits.
	err = svc.SetParticipantStatus(ctx, created.ID, 1, 1, domain.ParticipationCancelled)
	assert.ErrorIs(t, err, ErrOrganizerCannotLeave)

	// cancelled -> confirmed is not in the transition table.
	err = svc.SetParticipantStatus(ctx, created.ID, 1, 2, domain.ParticipationConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Unknown participant.
	err = svc.SetParticipantStatus(ctx, created.ID, 1, 9, domain.ParticipationConfirmed)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestRunService_RateRun(t *testing.T) {
	svc, _, participations, ratings := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 2, domain.ParticipationConfirmed)

	saved, err := svc.RateRun(ctx, 2, created.ID, 4, "great pace")
	require.NoError(t, err)
	assert.Equal(t, 4, saved.Rating)

	// Re-rating replaces the previous value.
	saved, err = svc.RateRun(ctx, 2, created.ID, 5, "even better")
	require.NoError(t, err)
	assert.Equal(t, 5, saved.Rating)

	list, err := ratings.ListByRun(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Rating)
}

func TestRunService_RateRun_Errors(t *testing.T) {
	svc, _, participations, _ := newRunServiceForTest()
	ctx := context.Background()

	created, err := svc.CreateRun(ctx, futureRun(1))
	require.NoError(t, err)
	participations.set(created.ID, 2, domain.ParticipationPending)

	_, err = svc.RateRun(ctx, 2, created.ID, 0, "")
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = svc.RateRun(ctx, 2, created.ID, 6, "")
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	// Pending participants cannot rate.
	_, err = svc.RateRun(ctx, 2, created.ID, 3, "")
	assert.ErrorIs(t, err, ErrNotConfirmedParticipant)

	// Non-participants cannot rate.
	_, err = svc.RateRun(ctx, 9, created.ID, 3, "")
	assert.ErrorIs(t, err, ErrNotConfirmedParticipant)
}

func TestRunService_GetRuns_HidesPrivateFromAnonymous(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest()
	ctx := context.Background()

	public := futureRun(1)
	private := futureRun(1)
	private.IsPrivate = true

	_, err := svc.CreateRun(ctx, public)
	require.NoError(t, err)
	_, err = svc.CreateRun(ctx, private)
	require.NoError(t, err)

	anon, err := svc.GetRuns(ctx, domain.RunFilters{}, false)
	require.NoError(t, err)
	assert.Len(t, anon, 1)

	authed, err := svc.GetRuns(ctx, domain.RunFilters{}, true)
	require.NoError(t, err)
	assert.Len(t, authed, 2)
}
