package repository

import (
	"context"
	"fmt"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/repository/dao"
)

var (
	ErrRunNotFound = dao.ErrRunNotFound
)

type RunDAO interface {
	Insert(ctx context.Context, run dao.Run) (dao.Run, error)
	FindByID(ctx context.Context, id uint) (dao.RunListing, error)
	List(ctx context.Context, filters dao.RunFilters, authenticated bool) ([]dao.RunListing, error)
	ListAll(ctx context.Context) ([]dao.RunListing, error)
	ListOrganizedBy(ctx context.Context, userID uint, limit int) ([]dao.RunListing, error)
	ListParticipatedBy(ctx context.Context, userID uint, limit int) ([]dao.RunListing, error)
	Update(ctx context.Context, run dao.Run) (dao.Run, error)
	DeleteCascade(ctx context.Context, id uint) error
}

type RunRepository struct {
	dao RunDAO
}

func NewRunRepository(dao RunDAO) *RunRepository {
	return &RunRepository{
		dao: dao,
	}
}

func (r *RunRepository) Create(ctx context.Context, run domain.Run) (domain.Run, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(run))
	if err != nil {
		return domain.Run{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	run.ID = created.ID
	run.CreatedAt = created.CreatedAt
	run.UpdatedAt = created.UpdatedAt

	return run, nil
}

func (r *RunRepository) FindByID(ctx context.Context, id uint) (domain.Run, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Run{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.listingToDomain(found), nil
}

func (r *RunRepository) List(ctx context.Context, filters domain.RunFilters, authenticated bool) ([]domain.Run, error) {
	rows, err := r.dao.List(ctx, dao.RunFilters{
		City:        filters.City,
		Date:        filters.Date,
		Level:       string(filters.Level),
		DistanceMin: filters.DistanceMin,
		DistanceMax: filters.DistanceMax,
		Search:      filters.Search,
	}, authenticated)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.listingsToDomain(rows), nil
}

func (r *RunRepository) ListAll(ctx context.Context) ([]domain.Run, error) {
	rows, err := r.dao.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListAll -> %w", err)
	}

	return r.listingsToDomain(rows), nil
}

func (r *RunRepository) ListOrganizedBy(ctx context.Context, userID uint, limit int) ([]domain.Run, error) {
	rows, err := r.dao.ListOrganizedBy(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListOrganizedBy -> %w", err)
	}

	return r.listingsToDomain(rows), nil
}

func (r *RunRepository) ListParticipatedBy(ctx context.Context, userID uint, limit int) ([]domain.Run, error) {
	rows, err := r.dao.ListParticipatedBy(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListParticipatedBy -> %w", err)
	}

	return r.listingsToDomain(rows), nil
}

func (r *RunRepository) Update(ctx context.Context, run domain.Run) (domain.Run, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(run))
	if err != nil {
		return domain.Run{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	run.UpdatedAt = updated.UpdatedAt

	return run, nil
}

func (r *RunRepository) DeleteCascade(ctx context.Context, id uint) error {
	if err := r.dao.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteCascade -> %w", err)
	}

	return nil
}

func (r *RunRepository) domainToDao(run domain.Run) dao.Run {
	return dao.Run{
		ID:          run.ID,
		Title:       run.Title,
		Description: run.Description,
		Date:        run.Date,
		Location:    run.Location,
		Distance:    run.Distance,
		Level:       string(run.Level),
		IsPrivate:   run.IsPrivate,
		OrganizerID: run.OrganizerID,
		CreatedAt:   run.CreatedAt,
		UpdatedAt:   run.UpdatedAt,
	}
}

func (r *RunRepository) listingToDomain(row dao.RunListing) domain.Run {
	return domain.Run{
		ID:                row.ID,
		Title:             row.Title,
		Description:       row.Description,
		Date:              row.Date,
		Location:          row.Location,
		Distance:          row.Distance,
		Level:             domain.Level(row.Level),
		IsPrivate:         row.IsPrivate,
		OrganizerID:       row.OrganizerID,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
		OrganizerName:     row.OrganizerName,
		OrganizerPicture:  row.OrganizerPicture,
		ParticipantsCount: row.ParticipantsCount,
	}
}

func (r *RunRepository) listingsToDomain(rows []dao.RunListing) []domain.Run {
	runs := make([]domain.Run, len(rows))
	for i, row := range rows {
		runs[i] = r.listingToDomain(row)
	}

	return runs
}
