package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRunRequest_Validate(t *testing.T) {
	valid := CreateRunRequest{
		Title:    "Morning 10k",
		Date:     time.Now().Add(48 * time.Hour),
		Location: "Paris",
		Distance: 10,
		Level:    "intermediate",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *CreateRunRequest)
	}{
		{"short title", func(r *CreateRunRequest) { r.Title = "ab" }},
		{"missing location", func(r *CreateRunRequest) { r.Location = "" }},
		{"zero distance", func(r *CreateRunRequest) { r.Distance = 0 }},
		{"unknown level", func(r *CreateRunRequest) { r.Level = "elite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestParseRunFilters(t *testing.T) {
	filters, err := ParseRunFilters("Lyon", "2026-10-01", "beginner", "5-10", "trail")
	require.NoError(t, err)

	assert.Equal(t, "Lyon", filters.City)
	assert.Equal(t, "2026-10-01", filters.Date)
	require.NotNil(t, filters.DistanceMin)
	require.NotNil(t, filters.DistanceMax)
	assert.Equal(t, 5.0, *filters.DistanceMin)
	assert.Equal(t, 10.0, *filters.DistanceMax)
	assert.Equal(t, "trail", filters.Search)
}

func TestParseRunFilters_Errors(t *testing.T) {
	_, err := ParseRunFilters("", "01/10/2026", "", "", "")
	assert.Error(t, err)

	_, err = ParseRunFilters("", "", "elite", "", "")
	assert.Error(t, err)

	_, err = ParseRunFilters("", "", "", "fast", "")
	assert.Error(t, err)
}

func TestParseDistanceFilter(t *testing.T) {
	tests := []struct {
		raw     string
		min     float64
		max     float64
		openMax bool
		wantErr bool
	}{
		{raw: "5-10", min: 5, max: 10},
		{raw: "0.5-2.5", min: 0.5, max: 2.5},
		{raw: "10+", min: 10, openMax: true},
		{raw: "10-5", wantErr: true},
		{raw: "10", wantErr: true},
		{raw: "a-b", wantErr: true},
		{raw: "+", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			min, max, err := parseDistanceFilter(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidDistanceFilter)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, min)
			assert.Equal(t, tt.min, *min)
			if tt.openMax {
				assert.Nil(t, max)
			} else {
				require.NotNil(t, max)
				assert.Equal(t, tt.max, *max)
			}
		})
	}
}

func TestRegisterRequest_PasswordPolicy(t *testing.T) {
	valid := RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
		Level:    "beginner",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "pass1"},
		{"no digit", "passwords"},
		{"no letter", "12345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Password = tt.password
			assert.Error(t, req.Validate())
		})
	}
}
