package class

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
)

type Class struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	GradeLevel    *int      `json:"grade_level"`
	AcademicYear  string    `json:"academic_year"`
	InstitutionID string    `json:"institution_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name          string `json:"name" validate:"required,notblank"`
	GradeLevel    *int   `json:"grade_level" validate:"omitempty,min=0,max=20"`
	AcademicYear  string `json:"academic_year" validate:"omitempty,max=20"`
	InstitutionID string `json:"institution_id" validate:"omitempty,uuid"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	nc.InstitutionID = core.CleanString(nc.InstitutionID)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass NewClass

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	return (*NewClass)(uc).Validate(validate)
}

type QueryFilter struct {
	Search        string `query:"search"`
	InstitutionID string `query:"institution_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.InstitutionID = core.CleanString(qf.InstitutionID)
}
