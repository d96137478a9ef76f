package request

import (
	"errors"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/runshare/runshare-api/internal/domain"
)

var errInvalidDistanceFilter = errors.New(`distance filter must look like "5-10" or "10+"`)

type CreateRunRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Distance    float64   `json:"distance"`
	Level       string    `json:"level"`
	IsPrivate   bool      `json:"is_private"`
}

func (req *CreateRunRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(3, 100)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.Location, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Distance, validation.Required, validation.Min(0.1)),
		validation.Field(&req.Level, validation.Required, validation.In("beginner", "intermediate", "advanced")),
	)
}

type UpdateRunRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Distance    *float64   `json:"distance"`
	Level       *string    `json:"level"`
	IsPrivate   *bool      `json:"is_private"`
}

func (req *UpdateRunRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(3, 100)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.Location, validation.NilOrNotEmpty, validation.Length(2, 200)),
		validation.Field(&req.Distance, validation.Min(0.1)),
		validation.Field(&req.Level, validation.In("beginner", "intermediate", "advanced")),
	)
}

func (req *UpdateRunRequest) ToDomain() domain.RunUpdate {
	update := domain.RunUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Distance:    req.Distance,
		IsPrivate:   req.IsPrivate,
	}
	if req.Level != nil {
		level := domain.Level(*req.Level)
		update.Level = &level
	}

	return update
}

type RateRunRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (req *RateRunRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Rating, validation.Required, validation.Min(domain.MinRating), validation.Max(domain.MaxRating)),
		validation.Field(&req.Comment, validation.Length(0, 500)),
	)
}

type ParticipantStatusRequest struct {
	Status string `json:"status"`
}

func (req *ParticipantStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In("pending", "confirmed", "cancelled")),
	)
}

// ParseRunFilters reads the listing query parameters. The distance
// parameter uses a small grammar, "5-10" for a range and "10+" for an
// open lower bound.
func ParseRunFilters(city, date, level, distance, search string) (domain.RunFilters, error) {
	filters := domain.RunFilters{
		City:   city,
		Date:   date,
		Level:  domain.Level(level),
		Search: search,
	}

	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return domain.RunFilters{}, errors.New("date filter must be formatted as YYYY-MM-DD")
		}
	}

	if level != "" && !domain.Level(level).IsValid() {
		return domain.RunFilters{}, errors.New("level filter must be beginner, intermediate or advanced")
	}

	if distance != "" {
		min, max, err := parseDistanceFilter(distance)
		if err != nil {
			return domain.RunFilters{}, err
		}
		filters.DistanceMin = min
		filters.DistanceMax = max
	}

	return filters, nil
}

func parseDistanceFilter(raw string) (*float64, *float64, error) {
	if after, found := strings.CutSuffix(raw, "+"); found {
		min, err := strconv.ParseFloat(after, 64)
		if err != nil {
			return nil, nil, errInvalidDistanceFilter
		}

		return &min, nil, nil
	}

	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return nil, nil, errInvalidDistanceFilter
	}

	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, nil, errInvalidDistanceFilter
	}
	max, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, nil, errInvalidDistanceFilter
	}
	if min > max {
		return nil, nil, errInvalidDistanceFilter
	}

	return &min, &max, nil
}
