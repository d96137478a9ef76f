package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// UserRating is a directed rating edge between two users. At most one
// live rating exists per (rater, ratee) pair; re-rating updates in place.
type UserRating struct {
	ID        uint      `json:"id"`
	RaterID   uint      `json:"rater_id"`
	RateeID   uint      `json:"ratee_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	RaterUsername string `json:"rater_username,omitempty"`
	RaterPicture  string `json:"rater_picture,omitempty"`
}

// RunRating is a participant's rating of a run, one per (user, run).
type RunRating struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	RunID     uint      `json:"run_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	Username string `json:"username,omitempty"`
}
