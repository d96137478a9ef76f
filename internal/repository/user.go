package repository

import (
	"context"
	"fmt"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository/dao"
)

var (
	ErrUserEmailExists    = dao.ErrUserEmailExists
	ErrUserUsernameExists = dao.ErrUserUsernameExists
	ErrUserNotFound       = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	FindByUsername(ctx context.Context, username string) (dao.User, error)
	Update(ctx context.Context, user dao.User) (dao.User, error)
	UpdateRole(ctx context.Context, id uint, role string) error
	UpdateProfilePicture(ctx context.Context, id uint, path string) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	ListWithStats(ctx context.Context) ([]dao.UserStats, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	found, err := r.dao.FindByUsername(ctx, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByUsername -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role domain.Role) error {
	if err := r.dao.UpdateRole(ctx, id, string(role)); err != nil {
		return fmt.Errorf("r.dao.UpdateRole -> %w", err)
	}

	return nil
}

func (r *UserRepository) UpdateProfilePicture(ctx context.Context, id uint, path string) error {
	if err := r.dao.UpdateProfilePicture(ctx, id, path); err != nil {
		return fmt.Errorf("r.dao.UpdateProfilePicture -> %w", err)
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	if err := r.dao.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("r.dao.UpdatePassword -> %w", err)
	}

	return nil
}

func (r *UserRepository) ListWithStats(ctx context.Context) ([]domain.UserWithStats, error) {
	rows, err := r.dao.ListWithStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListWithStats -> %w", err)
	}

	users := make([]domain.UserWithStats, len(rows))
	for i, row := range rows {
		users[i] = domain.UserWithStats{
			User:                  r.daoToDomain(row.User),
			AverageRating:         row.AverageRating,
			OrganizedRunsCount:    row.OrganizedRunsCount,
			ParticipatedRunsCount: row.ParticipatedRunsCount,
		}
	}

	return users, nil
}

func (r *UserRepository) DeleteCascade(ctx context.Context, id uint) error {
	if err := r.dao.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteCascade -> %w", err)
	}

	return nil
}

func (r *UserRepository) domainToDao(u domain.User) dao.User {
	return dao.User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Password:       u.Password,
		City:           u.City,
		Level:          string(u.Level),
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Role:           string(u.Role),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Password:       u.Password,
		City:           u.City,
		Level:          domain.Level(u.Level),
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Role:           domain.Role(u.Role),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
