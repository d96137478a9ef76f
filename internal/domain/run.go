package domain

import "time"

type Run struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Distance    float64   `json:"distance"`
	Level       Level     `json:"level"`
	IsPrivate   bool      `json:"is_private"`
	OrganizerID uint      `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	OrganizerName     string `json:"organizer_name,omitempty"`
	OrganizerPicture  string `json:"organizer_picture,omitempty"`
	ParticipantsCount int64  `json:"participants_count"`
}

// RunDetail is the single-run view with participants and run ratings.
type RunDetail struct {
	Run
	Participants []Participation `json:"participants"`
	Ratings      []RunRating     `json:"ratings"`
}

// RunFilters are the optional listing criteria. Zero values mean
// "no filter". DistanceMin/DistanceMax come from the "min-max" or
// "min+" query grammar.
type RunFilters struct {
	City        string
	Date        string
	Level       Level
	DistanceMin *float64
	DistanceMax *float64
	Search      string
}

// RunUpdate carries the optional fields of a run update. Nil pointers
// mean "leave unchanged".
type RunUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Distance    *float64
	Level       *Level
	IsPrivate   *bool
}
