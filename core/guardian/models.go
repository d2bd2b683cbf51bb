package guardian

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
)

// Guardian is the parent record of one or more students.
// Phone is the legacy single phone; MotherPhone and FatherPhone are the split contacts.
type Guardian struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id,omitempty"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	MotherName    string    `json:"mother_name"`
	MotherPhone   string    `json:"mother_phone"`
	FatherName    string    `json:"father_name"`
	FatherPhone   string    `json:"father_phone"`
	InstitutionID string    `json:"institution_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasSyntheticEmail reports whether the Guardian email is a derived import key rather than a real address.
func (g Guardian) HasSyntheticEmail() bool {
	return IsSyntheticEmail(g.Email)
}

// UpdateGuardian defines what information may be provided to modify an existing Guardian.
type UpdateGuardian struct {
	FullName    string  `json:"full_name"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone" validate:"omitempty,phone"`
	MotherName  string  `json:"mother_name"`
	MotherPhone string  `json:"mother_phone" validate:"omitempty,phone"`
	FatherName  string  `json:"father_name"`
	FatherPhone string  `json:"father_phone" validate:"omitempty,phone"`
	UserID      *string `json:"user_id" validate:"omitempty,uuid"`
}

func (ug *UpdateGuardian) Validate(orig Guardian, validate *validator.Validate) error {
	if name := core.CleanString(ug.FullName); name != "" {
		ug.FullName = name
	} else {
		ug.FullName = orig.FullName
	}
	if email := core.CleanString(ug.Email, true /* lower */); email != "" {
		ug.Email = email
	} else {
		ug.Email = orig.Email
	}
	ug.Phone = core.CleanString(ug.Phone)
	ug.MotherName = core.CleanString(ug.MotherName)
	ug.MotherPhone = core.CleanString(ug.MotherPhone)
	ug.FatherName = core.CleanString(ug.FatherName)
	ug.FatherPhone = core.CleanString(ug.FatherPhone)
	if ug.UserID != nil {
		uid := core.CleanString(*ug.UserID)
		ug.UserID = &uid
	}
	return validate.Struct(ug)
}

type QueryFilter struct {
	Search        string   `query:"search"`
	InstitutionID string   `query:"institution_id"`
	Emails        []string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.InstitutionID = core.CleanString(qf.InstitutionID)
}

// GetFilter selects a single Guardian; the first non-empty field wins.
type GetFilter struct {
	ID     string
	UserID string
}
