package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type User struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	City           string    `json:"city"`
	Level          Level     `json:"level"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserProfile is the public profile view: the user plus aggregated
// ratings and run history.
type UserProfile struct {
	User
	AverageRating    float64      `json:"average_rating"`
	Ratings          []UserRating `json:"ratings"`
	OrganizedRuns    []Run        `json:"organized_runs"`
	ParticipatedRuns []Run        `json:"participated_runs"`
}

// UserWithStats is the admin listing view.
type UserWithStats struct {
	User
	AverageRating         float64 `json:"average_rating"`
	OrganizedRunsCount    int64   `json:"organized_runs_count"`
	ParticipatedRunsCount int64   `json:"participated_runs_count"`
}

// ProfileUpdate carries the optional fields of a self profile update.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Username *string
	City     *string
	Level    *Level
	Bio      *string
	Password *string
}

func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.City == nil && u.Level == nil && u.Bio == nil && u.Password == nil
}
