package meeting

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
)

// Meeting types
const (
	TypeInPerson = "in-person"
	TypePhone    = "phone"
	TypeOnline   = "online"
)

// DateLayout is the layout of FollowUpDate.
const DateLayout = "2006-01-02"

// Meeting is a teacher's log of a meeting with the parents of a student.
type Meeting struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	TeacherID        string    `json:"teacher_id"`
	MeetingDate      time.Time `json:"meeting_date"`
	MeetingType      string    `json:"meeting_type"`
	Subject          string    `json:"subject"`
	Notes            string    `json:"notes"`
	Participants     string    `json:"participants"`
	FollowUpRequired bool      `json:"follow_up_required"`
	FollowUpDate     string    `json:"follow_up_date,omitempty"` // YYYY-MM-DD
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	TeacherName string `json:"teacher_name,omitempty"` // read-only, joined from teachers
}

// NewMeeting contains information needed to log a new Meeting.
type NewMeeting struct {
	MeetingDate      time.Time `json:"meeting_date" validate:"required"`
	MeetingType      string    `json:"meeting_type" validate:"required,oneof=in-person phone online"`
	Subject          string    `json:"subject" validate:"required,notblank,max=200"`
	Notes            string    `json:"notes"`
	Participants     string    `json:"participants"`
	FollowUpRequired bool      `json:"follow_up_required"`
	FollowUpDate     string    `json:"follow_up_date" validate:"required_if=FollowUpRequired true,omitempty,datetime=2006-01-02"`
}

func (nm *NewMeeting) Validate(validate *validator.Validate) error {
	nm.MeetingType = core.CleanString(nm.MeetingType, true /* lower */)
	nm.Subject = core.CleanString(nm.Subject)
	nm.Notes = core.CleanString(nm.Notes)
	nm.Participants = core.CleanString(nm.Participants)
	nm.FollowUpDate = core.CleanString(nm.FollowUpDate)
	if !nm.FollowUpRequired {
		nm.FollowUpDate = ""
	}
	return validate.Struct(nm)
}

// UpdateMeeting defines what information may be provided to modify an existing Meeting.
type UpdateMeeting NewMeeting

func (um *UpdateMeeting) Validate(validate *validator.Validate) error {
	return (*NewMeeting)(um).Validate(validate)
}

// Recipient is who gets the follow-up email of a Meeting.
type Recipient struct {
	StudentName   string
	GuardianName  string
	GuardianEmail string
}
