package teacher

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/user"
)

type Teacher struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	SubjectID     string    `json:"subject_id,omitempty"`
	SubjectName   string    `json:"subject_name,omitempty"` // read-only, joined from subjects
	InstitutionID string    `json:"institution_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewTeacher contains information needed to create a Teacher and their login.
type NewTeacher struct {
	FullName        string `json:"full_name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	SubjectID       string `json:"subject_id" validate:"omitempty,uuid"`
	InstitutionID   string `json:"institution_id" validate:"omitempty,uuid"`
}

// userData is the login created along with the Teacher.
func (nt NewTeacher) userData() user.NewUser {
	return user.NewUser{
		Name:            nt.FullName,
		Email:           nt.Email,
		Password:        nt.Password,
		PasswordConfirm: nt.PasswordConfirm,
		Role:            user.RoleTeacher,
		InstitutionID:   nt.InstitutionID,
	}
}

// Validate checks the Teacher fields, then applies the user rules (password policy, unique email) to the login.
func (nt *NewTeacher) Validate(ctx context.Context, validate *validator.Validate, usrSvc user.ServiceInterface) error {
	nt.FullName = core.CleanString(nt.FullName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.SubjectID = core.CleanString(nt.SubjectID)
	nt.InstitutionID = core.CleanString(nt.InstitutionID)

	if err := validate.Struct(nt); err != nil {
		return err
	}
	nu := nt.userData()
	return nu.Validate(ctx, validate, usrSvc)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
type UpdateTeacher struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email" validate:"omitempty,email"`
	SubjectID     string `json:"subject_id" validate:"omitempty,uuid"`
	InstitutionID string `json:"institution_id" validate:"omitempty,uuid"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, validate *validator.Validate) error {
	if name := core.CleanString(ut.FullName); name != "" {
		ut.FullName = name
	} else {
		ut.FullName = orig.FullName
	}
	if email := core.CleanString(ut.Email, true /* lower */); email != "" {
		ut.Email = email
	} else {
		ut.Email = orig.Email
	}
	ut.SubjectID = core.CleanString(ut.SubjectID)
	ut.InstitutionID = core.CleanString(ut.InstitutionID)
	return validate.Struct(ut)
}

type QueryFilter struct {
	Search        string `query:"search"`
	SubjectID     string `query:"subject_id"`
	InstitutionID string `query:"institution_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.InstitutionID = core.CleanString(qf.InstitutionID)
}

// GetFilter selects a single Teacher; the first non-empty field wins.
type GetFilter struct {
	ID     string
	UserID string
}
