package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRunNotFound = errors.New("run not found")
)

type Run struct {
	ID uint `gorm:"primaryKey"`

	Title       string    `gorm:"not null"`
	Description string
	Date        time.Time `gorm:"not null;index"`
	Location    string    `gorm:"not null"`
	Distance    float64
	Level       string
	IsPrivate   bool `gorm:"not null;default:false"`

	OrganizerID uint `gorm:"not null;index"`
	Organizer   User `gorm:"foreignKey:OrganizerID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RunListing is the scan target for list views: the run with organizer
// columns and the live confirmed-participant count.
type RunListing struct {
	Run
	OrganizerName     string
	OrganizerPicture  string
	ParticipantsCount int64
}

// RunFilters mirrors the optional listing criteria at the store level.
type RunFilters struct {
	City        string
	Date        string
	Level       string
	DistanceMin *float64
	DistanceMax *float64
	Search      string
}

type RunDAO struct {
	db *gorm.DB
}

func NewRunDAO(db *gorm.DB) *RunDAO {
	return &RunDAO{
		db: db,
	}
}

// Insert creates the run and the organizer's confirmed participation in
// a single transaction.
func (d *RunDAO) Insert(ctx context.Context, run Run) (Run, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}

		participation := Participation{
			UserID:   run.OrganizerID,
			RunID:    run.ID,
			Status:   "confirmed",
			JoinedAt: time.Now(),
		}

		return tx.Create(&participation).Error
	})
	if err != nil {
		return Run{}, err
	}

	return run, nil
}

func (d *RunDAO) FindByID(ctx context.Context, id uint) (RunListing, error) {
	var row RunListing

	result := d.db.WithContext(ctx).
		Table("runs").
		Select(`runs.*,
			users.username AS organizer_name,
			users.profile_picture AS organizer_picture,
			COUNT(p.user_id) AS participants_count`).
		Joins("JOIN users ON users.id = runs.organizer_id").
		Joins("LEFT JOIN participations p ON p.run_id = runs.id AND p.status = ?", "confirmed").
		Where("runs.id = ?", id).
		Group("runs.id, users.username, users.profile_picture").
		Scan(&row)
	if result.Error != nil {
		return RunListing{}, result.Error
	}
	if row.ID == 0 {
		return RunListing{}, ErrRunNotFound
	}

	return row, nil
}

// List composes the filtered, paginated-by-date listing: upcoming runs
// only, private runs hidden from unauthenticated requesters, soonest
// date first.
func (d *RunDAO) List(ctx context.Context, filters RunFilters, authenticated bool) ([]RunListing, error) {
	q := d.db.WithContext(ctx).
		Table("runs").
		Select(`runs.*,
			users.username AS organizer_name,
			users.profile_picture AS organizer_picture,
			COUNT(p.user_id) AS participants_count`).
		Joins("JOIN users ON users.id = runs.organizer_id").
		Joins("LEFT JOIN participations p ON p.run_id = runs.id AND p.status = ?", "confirmed").
		Where("runs.date >= ?", time.Now())

	if filters.City != "" {
		q = q.Where("runs.location ILIKE ?", "%"+filters.City+"%")
	}
	if filters.Date != "" {
		q = q.Where("DATE(runs.date) = ?", filters.Date)
	}
	if filters.Level != "" {
		q = q.Where("runs.level = ?", filters.Level)
	}
	if filters.DistanceMin != nil {
		q = q.Where("runs.distance >= ?", *filters.DistanceMin)
	}
	if filters.DistanceMax != nil {
		q = q.Where("runs.distance <= ?", *filters.DistanceMax)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		q = q.Where("runs.title ILIKE ? OR runs.description ILIKE ? OR runs.location ILIKE ?", like, like, like)
	}
	if !authenticated {
		q = q.Where("runs.is_private = ?", false)
	}

	var rows []RunListing
	result := q.
		Group("runs.id, users.username, users.profile_picture").
		Order("runs.date ASC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ListAll is the admin view: every run regardless of date or visibility.
func (d *RunDAO) ListAll(ctx context.Context) ([]RunListing, error) {
	var rows []RunListing

	result := d.db.WithContext(ctx).
		Table("runs").
		Select(`runs.*,
			users.username AS organizer_name,
			users.profile_picture AS organizer_picture,
			COUNT(p.user_id) AS participants_count`).
		Joins("JOIN users ON users.id = runs.organizer_id").
		Joins("LEFT JOIN participations p ON p.run_id = runs.id AND p.status = ?", "confirmed").
		Group("runs.id, users.username, users.profile_picture").
		Order("runs.date DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

func (d *RunDAO) ListOrganizedBy(ctx context.Context, userID uint, limit int) ([]RunListing, error) {
	var rows []RunListing

	result := d.db.WithContext(ctx).
		Table("runs").
		Select(`runs.*,
			users.username AS organizer_name,
			users.profile_picture AS organizer_picture,
			COUNT(p.user_id) AS participants_count`).
		Joins("JOIN users ON users.id = runs.organizer_id").
		Joins("LEFT JOIN participations p ON p.run_id = runs.id AND p.status = ?", "confirmed").
		Where("runs.organizer_id = ?", userID).
		Group("runs.id, users.username, users.profile_picture").
		Order("runs.date DESC").
		Limit(limit).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// ListParticipatedBy returns runs the user holds a confirmed
// participation in, excluding runs they organize themselves.
func (d *RunDAO) ListParticipatedBy(ctx context.Context, userID uint, limit int) ([]RunListing, error) {
	var rows []RunListing

	result := d.db.WithContext(ctx).
		Table("runs").
		Select(`runs.*,
			users.username AS organizer_name,
			users.profile_picture AS organizer_picture,
			COUNT(p2.user_id) AS participants_count`).
		Joins("JOIN participations p ON p.run_id = runs.id AND p.user_id = ? AND p.status = ?", userID, "confirmed").
		Joins("JOIN users ON users.id = runs.organizer_id").
		Joins("LEFT JOIN participations p2 ON p2.run_id = runs.id AND p2.status = ?", "confirmed").
		Where("runs.organizer_id != ?", userID).
		Group("runs.id, users.username, users.profile_picture").
		Order("runs.date DESC").
		Limit(limit).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

func (d *RunDAO) Update(ctx context.Context, run Run) (Run, error) {
	result := d.db.WithContext(ctx).Save(&run)
	if result.Error != nil {
		return Run{}, result.Error
	}

	return run, nil
}

// DeleteCascade removes the run's participations and run ratings before
// the run itself, in one transaction.
func (d *RunDAO) DeleteCascade(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&Participation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", id).Delete(&RunRating{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Run{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRunNotFound
		}

		return nil
	})
}
