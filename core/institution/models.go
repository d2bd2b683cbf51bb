package institution

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
)

type Institution struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	LogoURL   string    `json:"logo_url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats counts the records attached to an Institution.
type Stats struct {
	Teachers int `json:"teachers"`
	Students int `json:"students"`
	Classes  int `json:"classes"`
	Parents  int `json:"parents"`
}

// InUseError is returned when deleting an Institution that still has teachers or students.
type InUseError struct {
	Teachers int
	Students int
}

func (e *InUseError) Error() string {
	return "institution still has teachers or students attached"
}

// NewInstitution contains information needed to create a new Institution.
type NewInstitution struct {
	Name     string `json:"name" validate:"required,notblank"`
	Address  string `json:"address"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	LogoURL  string `json:"logo_url" validate:"omitempty,url"`
	IsActive *bool  `json:"is_active"`
}

func (ni *NewInstitution) Validate(validate *validator.Validate) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Address = core.CleanString(ni.Address)
	ni.Phone = core.CleanString(ni.Phone)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.LogoURL = core.CleanString(ni.LogoURL)
	return validate.Struct(ni)
}

// UpdateInstitution defines what information may be provided to modify an existing Institution.
type UpdateInstitution NewInstitution

func (ui *UpdateInstitution) Validate(validate *validator.Validate) error {
	return (*NewInstitution)(ui).Validate(validate)
}

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
