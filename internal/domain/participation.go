package domain

import "time"

type ParticipationStatus string

const (
	ParticipationPending   ParticipationStatus = "pending"
	ParticipationConfirmed ParticipationStatus = "confirmed"
	ParticipationCancelled ParticipationStatus = "cancelled"
)

// participationTransitions is the single source of truth for the
// participation lifecycle. A missing entry means the transition is illegal.
var participationTransitions = map[ParticipationStatus]map[ParticipationStatus]bool{
	ParticipationPending: {
		ParticipationConfirmed: true,
		ParticipationCancelled: true,
	},
	ParticipationConfirmed: {
		ParticipationCancelled: true,
	},
	ParticipationCancelled: {
		ParticipationPending: true, // re-join reactivates the row
	},
}

func (s ParticipationStatus) IsValid() bool {
	switch s {
	case ParticipationPending, ParticipationConfirmed, ParticipationCancelled:
		return true
	}
	return false
}

func (s ParticipationStatus) CanTransitionTo(next ParticipationStatus) bool {
	return participationTransitions[s][next]
}

type Participation struct {
	UserID   uint                `json:"user_id"`
	RunID    uint                `json:"run_id"`
	Status   ParticipationStatus `json:"status"`
	JoinedAt time.Time           `json:"joined_at"`

	Username       string `json:"username,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}
