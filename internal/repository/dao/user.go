package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserEmailExists    = errors.New("email already in use")
	ErrUserUsernameExists = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Username string `gorm:"unique;not null"`
	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	City           string
	Level          string `gorm:"not null;default:beginner"`
	Bio            string
	ProfilePicture string
	Role           string `gorm:"not null;default:user"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// UserStats is the scan target for the admin listing with derived counts.
type UserStats struct {
	User
	AverageRating         float64
	OrganizedRunsCount    int64
	ParticipatedRunsCount int64
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return User{}, translateUniqueViolation(result.Error)
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByUsername(ctx context.Context, username string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) Update(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Save(&user)
	if result.Error != nil {
		return User{}, translateUniqueViolation(result.Error)
	}

	return user, nil
}

func (d *UserDAO) UpdateRole(ctx context.Context, id uint, role string) error {
	result := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (d *UserDAO) UpdateProfilePicture(ctx context.Context, id uint, path string) error {
	result := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("profile_picture", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (d *UserDAO) UpdatePassword(ctx context.Context, id uint, hash string) error {
	result := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("password", hash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListWithStats returns every user with their average received rating
// and organized/participated run counts, newest accounts first.
func (d *UserDAO) ListWithStats(ctx context.Context) ([]UserStats, error) {
	var rows []UserStats

	result := d.db.WithContext(ctx).
		Table("users").
		Select(`users.*,
			COALESCE(AVG(ur.rating), 0) AS average_rating,
			COUNT(DISTINCT r.id) AS organized_runs_count,
			COUNT(DISTINCT p.run_id) AS participated_runs_count`).
		Joins("LEFT JOIN user_ratings ur ON ur.ratee_id = users.id").
		Joins("LEFT JOIN runs r ON r.organizer_id = users.id").
		Joins("LEFT JOIN participations p ON p.user_id = users.id AND p.status = ?", "confirmed").
		Group("users.id").
		Order("users.created_at DESC").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// DeleteCascade removes a user and everything hanging off them: ratings
// given and received, run ratings, participations, messages, owned runs
// with their participations and run ratings, then the user row. All in
// one transaction.
func (d *UserDAO) DeleteCascade(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rater_id = ? OR ratee_id = ?", id, id).Delete(&UserRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&RunRating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&Participation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", id, id).Delete(&Message{}).Error; err != nil {
			return err
		}

		var runIDs []uint
		if err := tx.Model(&Run{}).Where("organizer_id = ?", id).Pluck("id", &runIDs).Error; err != nil {
			return err
		}
		if len(runIDs) > 0 {
			if err := tx.Where("run_id IN ?", runIDs).Delete(&Participation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("run_id IN ?", runIDs).Delete(&RunRating{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", runIDs).Delete(&Run{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pgErr.Message, `"uni_users_email"`):
			return ErrUserEmailExists
		case strings.Contains(pgErr.Message, `"uni_users_username"`):
			return ErrUserUsernameExists
		}
	}

	return err
}
