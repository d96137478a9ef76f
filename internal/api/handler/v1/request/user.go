package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/runshare/runshare-api/internal/domain"
)

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	City     *string `json:"city"`
	Level    *string `json:"level"`
	Bio      *string `json:"bio"`
	Password *string `json:"password"`
}

func (req *UpdateProfileRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.NilOrNotEmpty, validation.Length(3, 30)),
		validation.Field(&req.City, validation.Length(0, 100)),
		validation.Field(&req.Level, validation.In("beginner", "intermediate", "advanced")),
		validation.Field(&req.Bio, validation.Length(0, 500)),
	)
	if err != nil {
		return err
	}

	if req.Password != nil {
		return validatePassword(*req.Password)
	}

	return nil
}

// ToDomain converts the request into the partial update the service
// applies. Absent fields stay nil.
func (req *UpdateProfileRequest) ToDomain() domain.ProfileUpdate {
	update := domain.ProfileUpdate{
		Username: req.Username,
		City:     req.City,
		Bio:      req.Bio,
		Password: req.Password,
	}
	if req.Level != nil {
		level := domain.Level(*req.Level)
		update.Level = &level
	}

	return update
}

type RateUserRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (req *RateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Rating, validation.Required, validation.Min(domain.MinRating), validation.Max(domain.MaxRating)),
		validation.Field(&req.Comment, validation.Length(0, 500)),
	)
}
