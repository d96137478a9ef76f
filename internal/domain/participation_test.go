package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ParticipationStatus
		to   ParticipationStatus
		want bool
	}{
		{"pending to confirmed", ParticipationPending, ParticipationConfirmed, true},
		{"pending to cancelled", ParticipationPending, ParticipationCancelled, true},
		{"confirmed to cancelled", ParticipationConfirmed, ParticipationCancelled, true},
		{"cancelled to pending", ParticipationCancelled, ParticipationPending, true},
		{"confirmed to pending", ParticipationConfirmed, ParticipationPending, false},
		{"cancelled to confirmed", ParticipationCancelled, ParticipationConfirmed, false},
		{"pending to pending", ParticipationPending, ParticipationPending, false},
		{"confirmed to confirmed", ParticipationConfirmed, ParticipationConfirmed, false},
		{"cancelled to cancelled", ParticipationCancelled, ParticipationCancelled, false},
		{"unknown source", ParticipationStatus("unknown"), ParticipationConfirmed, false},
		{"unknown target", ParticipationPending, ParticipationStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParticipationStatus_IsValid(t *testing.T) {
	assert.True(t, ParticipationPending.IsValid())
	assert.True(t, ParticipationConfirmed.IsValid())
	assert.True(t, ParticipationCancelled.IsValid())
	assert.False(t, ParticipationStatus("deleted").IsValid())
	assert.False(t, ParticipationStatus("").IsValid())
}
