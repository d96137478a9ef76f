package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runshare/runshare-api/internal/domain"
)

func newMessageServiceForTest(eligibility *stubEligibility) (*MessageService, *fakeUserRepo, *fakeMessageRepo) {
	users := newFakeUserRepo()
	messages := newFakeMessageRepo()

	return NewMessageService(messages, users, eligibility), users, messages
}

func TestMessageService_Send(t *testing.T) {
	svc, users, _ := newMessageServiceForTest(&stubEligibility{canCommunicate: true})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})

	message, err := svc.Send(ctx, alice.ID, bob.ID, "  see you at the start line  ")
	require.NoError(t, err)
	assert.Equal(t, "see you at the start line", message.Content)
	assert.Equal(t, alice.ID, message.SenderID)
	assert.Equal(t, bob.ID, message.RecipientID)
	assert.False(t, message.SentAt.IsZero())
}

func TestMessageService_Send_Errors(t *testing.T) {
	svc, users, _ := newMessageServiceForTest(&stubEligibility{canCommunicate: false})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})

	_, err := svc.Send(ctx, alice.ID, bob.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Send(ctx, alice.ID, 999, "hello")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Send(ctx, alice.ID, bob.ID, "hello")
	assert.ErrorIs(t, err, ErrNotEligibleToChat)
}

func TestMessageService_GetConversation(t *testing.T) {
	eligibility := &stubEligibility{canCommunicate: true}
	svc, users, _ := newMessageServiceForTest(eligibility)
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})
	carol := users.add(domain.User{Username: "carol"})

	_, err := svc.Send(ctx, alice.ID, bob.ID, "first")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, alice.ID, "second")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice.ID, carol.ID, "unrelated")
	require.NoError(t, err)

	messages, err := svc.GetConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)

	// History is gated by the same eligibility check as sending.
	eligibility.canCommunicate = false
	_, err = svc.GetConversation(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotEligibleToChat)
}

func TestMessageService_ListConversations(t *testing.T) {
	svc, users, _ := newMessageServiceForTest(&stubEligibility{canCommunicate: true})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})
	carol := users.add(domain.User{Username: "carol"})

	_, err := svc.Send(ctx, alice.ID, bob.ID, "hey bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, carol.ID, alice.ID, "hey alice")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice.ID, bob.ID, "bob again")
	require.NoError(t, err)

	conversations, err := svc.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Most recent conversation first, one entry per peer.
	assert.Equal(t, bob.ID, conversations[0].OtherUserID)
	assert.Equal(t, "bob again", conversations[0].LastMessage)
	assert.Equal(t, carol.ID, conversations[1].OtherUserID)
}

func TestMessageService_CountReceived(t *testing.T) {
	svc, users, _ := newMessageServiceForTest(&stubEligibility{canCommunicate: true})
	ctx := context.Background()

	alice := users.add(domain.User{Username: "alice"})
	bob := users.add(domain.User{Username: "bob"})

	_, err := svc.Send(ctx, alice.ID, bob.ID, "one")
	require.NoError(t, err)
	_, err = svc.Send(ctx, alice.ID, bob.ID, "two")
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, alice.ID, "reply")
	require.NoError(t, err)

	count, err := svc.CountReceived(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
