package subject

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
)

type Subject struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	InstitutionID string    `json:"institution_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name          string `json:"name" validate:"required,notblank"`
	Description   string `json:"description"`
	InstitutionID string `json:"institution_id" validate:"omitempty,uuid"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	ns.InstitutionID = core.CleanString(ns.InstitutionID)
	return validate.Struct(ns)
}

type UpdateSubject NewSubject

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	return (*NewSubject)(us).Validate(validate)
}

type QueryFilter struct {
	Search        string `query:"search"`
	InstitutionID string `query:"institution_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.InstitutionID = core.CleanString(qf.InstitutionID)
}
