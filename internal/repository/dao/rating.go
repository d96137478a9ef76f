package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRatingNotFound = errors.New("rating not found")
)

type UserRating struct {
	ID uint `gorm:"primaryKey"`

	RaterID uint `gorm:"not null;uniqueIndex:idx_user_ratings_pair"`
	RateeID uint `gorm:"not null;uniqueIndex:idx_user_ratings_pair"`

	Rating  int `gorm:"not null"`
	Comment string

	CreatedAt time.Time `gorm:"not null"`

	Rater User `gorm:"foreignKey:RaterID"`
	Ratee User `gorm:"foreignKey:RateeID"`
}

type RunRating struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;uniqueIndex:idx_run_ratings_pair"`
	RunID  uint `gorm:"not null;uniqueIndex:idx_run_ratings_pair"`

	Rating  int `gorm:"not null"`
	Comment string

	CreatedAt time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
	Run  Run  `gorm:"foreignKey:RunID"`
}

// UserRatingRow is the scan target for received-rating listings.
type UserRatingRow struct {
	ID            uint
	RaterID       uint
	RateeID       uint
	Rating        int
	Comment       string
	CreatedAt     time.Time
	RaterUsername string
	RaterPicture  string
}

// RunRatingRow is the scan target for per-run rating listings.
type RunRatingRow struct {
	ID        uint
	UserID    uint
	RunID     uint
	Rating    int
	Comment   string
	CreatedAt time.Time
	Username  string
}

type RatingDAO struct {
	db *gorm.DB
}

func NewRatingDAO(db *gorm.DB) *RatingDAO {
	return &RatingDAO{
		db: db,
	}
}

// UpsertUserRating inserts the directed rating or, when the pair already
// has one, updates it in place with a refreshed timestamp.
func (d *RatingDAO) UpsertUserRating(ctx context.Context, rating UserRating) (UserRating, error) {
	rating.CreatedAt = time.Now()

	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rater_id"}, {Name: "ratee_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "created_at"}),
		}).
		Create(&rating)
	if result.Error != nil {
		return UserRating{}, result.Error
	}

	return rating, nil
}

func (d *RatingDAO) UpsertRunRating(ctx context.Context, rating RunRating) (RunRating, error) {
	rating.CreatedAt = time.Now()

	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "run_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "created_at"}),
		}).
		Create(&rating)
	if result.Error != nil {
		return RunRating{}, result.Error
	}

	return rating, nil
}

func (d *RatingDAO) ListReceivedByUser(ctx context.Context, userID uint) ([]UserRatingRow, error) {
	var rows []UserRatingRow

	result := d.db.WithContext(ctx).
		Table("user_ratings").
		Select(`user_ratings.*,
			users.username AS rater_username,
			users.profile_picture AS rater_picture`).
		Joins("JOIN users ON users.id = user_ratings.rater_id").
		Where("user_ratings.ratee_id = ?", userID).
		Order("user_ratings.created_at DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

func (d *RatingDAO) ListByRun(ctx context.Context, runID uint) ([]RunRatingRow, error) {
	var rows []RunRatingRow

	result := d.db.WithContext(ctx).
		Table("run_ratings").
		Select("run_ratings.*, users.username AS username").
		Joins("JOIN users ON users.id = run_ratings.user_id").
		Where("run_ratings.run_id = ?", runID).
		Order("run_ratings.created_at DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}
