package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/runshare/runshare-api/internal/domain"
)

func newUserServiceForTest(eligibility *stubEligibility) (*UserService, *fakeUserRepo, *fakeRunRepo, *fakeRatingRepo) {
	users := newFakeUserRepo()
	runs := newFakeRunRepo()
	ratings := newFakeRatingRepo()

	return NewUserService(users, runs, ratings, eligibility), users, runs, ratings
}

func TestUserService_GetProfile(t *testing.T) {
	svc, users, runs, ratings := newUserServiceForTest(&stubEligibility{})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})
	carol := users.add(domain.User{Username: "carol"})

	runs.add(domain.Run{Title: "Morning 10K", OrganizerID: alice.ID})
	runs.add(domain.Run{Title: "Trail day", OrganizerID: alice.ID})

	_, err := ratings.UpsertUserRating(ctx, domain.UserRating{RaterID: bob.ID, RateeID: alice.ID, Rating: 5})
	require.NoError(t, err)
	_, err = ratings.UpsertUserRating(ctx, domain.UserRating{RaterID: carol.ID, RateeID: alice.ID, Rating: 2})
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Len(t, profile.Ratings, 2)
	assert.InDelta(t, 3.5, profile.AverageRating, 0.001)
	assert.Len(t, profile.OrganizedRuns, 2)
}

func TestUserService_GetProfile_NoRatings(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest(&stubEligibility{})

	alice := users.add(domain.User{Username: "alice"})

	profile, err := svc.GetProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Zero(t, profile.AverageRating)
	assert.Empty(t, profile.Ratings)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest(&stubEligibility{})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice", City: "Paris"})

	newCity := "Lyon"
	newBio := "weekend trail runner"
	updated, err := svc.UpdateProfile(ctx, alice.ID, domain.ProfileUpdate{
		City: &newCity,
		Bio:  &newBio,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", updated.City)
	assert.Equal(t, "weekend trail runner", updated.Bio)
	assert.Equal(t, "alice", updated.Username)
}

func TestUserService_UpdateProfile_Empty(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest(&stubEligibility{})

	alice := users.add(domain.User{Username: "alice"})

	_, err := svc.UpdateProfile(context.Background(), alice.ID, domain.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestUserService_UpdateProfile_UsernameTaken(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest(&stubEligibility{})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	users.add(domain.User{Username: "bob"})

	taken := "bob"
	_, err := svc.UpdateProfile(ctx, alice.ID, domain.ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, ErrUserUsernameExists)

	// Setting your own current username is a no-op, not a conflict.
	own := "alice"
	_, err = svc.UpdateProfile(ctx, alice.ID, domain.ProfileUpdate{Username: &own})
	assert.NoError(t, err)
}

func TestUserService_UpdateProfile_PasswordRehash(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest(&stubEligibility{})

	alice := users.add(domain.User{Username: "alice", Password: "old-hash"})

	newPassword := "fresh-password1"
	_, err := svc.UpdateProfile(context.Background(), alice.ID, domain.ProfileUpdate{Password: &newPassword})
	require.NoError(t, err)

	stored := users.users[alice.ID]
	assert.NotEqual(t, "fresh-password1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("fresh-password1")))
}

func TestUserService_RateUser(t *testing.T) {
	svc, users, _, ratings := newUserServiceForTest(&stubEligibility{canRate: true})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})

	saved, err := svc.RateUser(ctx, alice.ID, bob.ID, 4, "steady pace")
	require.NoError(t, err)
	assert.Equal(t, 4, saved.Rating)

	// Re-rating the same user overwrites the edge.
	_, err = svc.RateUser(ctx, alice.ID, bob.ID, 2, "changed my mind")
	require.NoError(t, err)

	received, err := ratings.ListReceivedByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, 2, received[0].Rating)
}

func TestUserService_RateUser_Errors(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest(&stubEligibility{canRate: false})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})

	_, err := svc.RateUser(ctx, alice.ID, alice.ID, 4, "")
	assert.ErrorIs(t, err, ErrSelfRating)

	_, err = svc.RateUser(ctx, alice.ID, bob.ID, 0, "")
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = svc.RateUser(ctx, alice.ID, bob.ID, 6, "")
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = svc.RateUser(ctx, alice.ID, 999, 4, "")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// No shared past run.
	_, err = svc.RateUser(ctx, alice.ID, bob.ID, 4, "")
	assert.ErrorIs(t, err, ErrNotEligibleToRate)
}

func TestUserService_DeleteUser(t *testing.T) {
	svc, users, _, _ := newUserServiceForTest(&stubEligibility{})
	ctx := context.Background()

	admin := users.add(domain.User{Username: "admin", Role: domain.RoleAdmin})
	target := users.add(domain.User{Username: "target"})

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrCannotDeleteSelf)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, 999), ErrUserNotFound)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, target.ID))
	assert.Equal(t, []uint{target.ID}, users.deleted)
}
