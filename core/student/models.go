package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/guardian"
)

// Student belongs to exactly one class and, optionally, to a guardian (ParentID).
type Student struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	ClassID       string    `json:"class_id"`
	ParentID      string    `json:"parent_id,omitempty"`
	InstitutionID string    `json:"institution_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// read-only, loaded by the repositories
	ClassName string             `json:"class_name,omitempty"`
	Guardian  *guardian.Guardian `json:"guardian,omitempty"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FirstName     string `json:"first_name" validate:"required,notblank"`
	LastName      string `json:"last_name" validate:"required,notblank"`
	ClassID       string `json:"class_id" validate:"required,uuid"`
	ParentID      string `json:"parent_id" validate:"omitempty,uuid"`
	InstitutionID string `json:"institution_id" validate:"omitempty,uuid"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.ClassID = core.CleanString(ns.ClassID)
	ns.ParentID = core.CleanString(ns.ParentID)
	ns.InstitutionID = core.CleanString(ns.InstitutionID)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent NewStudent

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	return (*NewStudent)(us).Validate(validate)
}

type QueryFilter struct {
	Search        string `query:"search"`
	ClassID       string `query:"class_id"`
	ParentID      string `query:"parent_id"`
	InstitutionID string `query:"institution_id"`
	ExcludeID     string `query:"-"`
	HasGuardian   bool   `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.ParentID = core.CleanString(qf.ParentID)
	qf.InstitutionID = core.CleanString(qf.InstitutionID)
}

// Sibling is another student presumed to share a guardian.
type Sibling struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ClassName string `json:"class_name"`
}
