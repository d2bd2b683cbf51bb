package rating

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
)

// Rating is a 1-5 skill rating given by a teacher to a student for a subject.
// Only visible ratings are shown to parents and in listings.
type Rating struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	TeacherID  string    `json:"teacher_id"`
	SubjectID  string    `json:"subject_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Visibility bool      `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// read-only, joined from teachers & subjects
	TeacherName  string `json:"teacher_name,omitempty"`
	TeacherEmail string `json:"teacher_email,omitempty"`
	SubjectName  string `json:"subject_name,omitempty"`
}

// NewRating contains information needed to rate a student.
type NewRating struct {
	SubjectID  string `json:"subject_id" validate:"required,uuid"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
	Visibility *bool  `json:"visibility"`
}

func (nr *NewRating) Validate(validate *validator.Validate) error {
	nr.SubjectID = core.CleanString(nr.SubjectID)
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}

// UpdateRating defines what information may be provided to modify an existing Rating.
type UpdateRating struct {
	Rating     int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
	Visibility *bool  `json:"visibility"`
}

func (ur *UpdateRating) Validate(validate *validator.Validate) error {
	ur.Comment = core.CleanString(ur.Comment)
	return validate.Struct(ur)
}

type QueryFilter struct {
	StudentIDs  []string
	TeacherID   string
	SubjectID   string
	VisibleOnly bool
}

// Summary is the rating overview of a student.
type Summary struct {
	TopSkill  string              `json:"top_skill,omitempty"`
	TopRating float64             `json:"top_rating"`
	Total     int                 `json:"total_ratings"`
	BySubject map[string][]Rating `json:"ratings_by_subject"`
}

// OtherSubject groups ratings whose subject is unknown.
const OtherSubject = "Other"

// Summarize groups ratings by subject name and finds the subject with the highest average.
// On equal averages the subject seen first in ratings wins.
func Summarize(ratings []Rating) Summary {
	type acc struct {
		sum, count int
	}
	sum := Summary{Total: len(ratings), BySubject: make(map[string][]Rating)}
	avgs := make(map[string]*acc)
	order := make([]string, 0)

	for _, r := range ratings {
		name := r.SubjectName
		if name == "" {
			name = OtherSubject
		}
		a, ok := avgs[name]
		if !ok {
			a = &acc{}
			avgs[name] = a
			order = append(order, name)
		}
		a.sum += r.Rating
		a.count++
		sum.BySubject[name] = append(sum.BySubject[name], r)
	}

	for _, name := range order {
		a := avgs[name]
		if avg := float64(a.sum) / float64(a.count); avg > sum.TopRating {
			sum.TopRating = avg
			sum.TopSkill = name
		}
	}
	return sum
}
