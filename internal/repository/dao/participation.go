package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAlreadyJoined  = errors.New("already joined this run")
	ErrNotParticipant = errors.New("not a participant of this run")
)

type Participation struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;uniqueIndex:idx_participations_user_run"`
	RunID  uint `gorm:"not null;uniqueIndex:idx_participations_user_run"`

	Status   string    `gorm:"not null;default:pending"`
	JoinedAt time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
	Run  Run  `gorm:"foreignKey:RunID"`
}

// ParticipantRow is the scan target for per-run participant listings.
type ParticipantRow struct {
	UserID         uint
	RunID          uint
	Status         string
	JoinedAt       time.Time
	Username       string
	ProfilePicture string
}

type ParticipationDAO struct {
	db *gorm.DB
}

func NewParticipationDAO(db *gorm.DB) *ParticipationDAO {
	return &ParticipationDAO{
		db: db,
	}
}

func (d *ParticipationDAO) Find(ctx context.Context, runID, userID uint) (Participation, error) {
	var p Participation

	result := d.db.WithContext(ctx).
		Where("run_id = ? AND user_id = ?", runID, userID).
		First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Participation{}, ErrNotParticipant
		}

		return Participation{}, result.Error
	}

	return p, nil
}

// Join performs the check-then-write join sequence inside a transaction,
// taking a row lock on any existing participation. A non-cancelled row
// fails with ErrAlreadyJoined; a cancelled row is reactivated to the
// given status with a refreshed timestamp; otherwise a new row is
// inserted. The composite unique index backstops concurrent joins that
// both pass the existence check.
func (d *ParticipationDAO) Join(ctx context.Context, runID, userID uint, status string) (Participation, error) {
	var joined Participation

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Participation
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("run_id = ? AND user_id = ?", runID, userID).
			First(&existing).Error

		switch {
		case err == nil:
			if existing.Status != "cancelled" {
				return ErrAlreadyJoined
			}

			existing.Status = status
			existing.JoinedAt = time.Now()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			joined = existing

			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			p := Participation{
				UserID:   userID,
				RunID:    runID,
				Status:   status,
				JoinedAt: time.Now(),
			}
			if err := tx.Create(&p).Error; err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
					return ErrAlreadyJoined
				}

				return err
			}
			joined = p

			return nil

		default:
			return err
		}
	})
	if err != nil {
		return Participation{}, err
	}

	return joined, nil
}

func (d *ParticipationDAO) UpdateStatus(ctx context.Context, runID, userID uint, status string) error {
	result := d.db.WithContext(ctx).
		Model(&Participation{}).
		Where("run_id = ? AND user_id = ?", runID, userID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotParticipant
	}

	return nil
}

func (d *ParticipationDAO) ListByRun(ctx context.Context, runID uint) ([]ParticipantRow, error) {
	var rows []ParticipantRow

	result := d.db.WithContext(ctx).
		Table("participations").
		Select(`participations.user_id, participations.run_id, participations.status, participations.joined_at,
			users.username, users.profile_picture`).
		Joins("JOIN users ON users.id = participations.user_id").
		Where("participations.run_id = ?", runID).
		Order("participations.status, participations.joined_at").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// HasSharedConfirmedRun reports whether a run exists where both users
// hold confirmed participations. With organizerScoped the run must be
// organized by one of the two; with pastOnly its date must have passed.
func (d *ParticipationDAO) HasSharedConfirmedRun(ctx context.Context, userA, userB uint, organizerScoped, pastOnly bool) (bool, error) {
	q := d.db.WithContext(ctx).
		Table("runs").
		Joins("JOIN participations p1 ON p1.run_id = runs.id AND p1.user_id = ? AND p1.status = ?", userA, "confirmed").
		Joins("JOIN participations p2 ON p2.run_id = runs.id AND p2.user_id = ? AND p2.status = ?", userB, "confirmed")

	if organizerScoped {
		q = q.Where("runs.organizer_id IN ?", []uint{userA, userB})
	}
	if pastOnly {
		q = q.Where("runs.date < ?", time.Now())
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
