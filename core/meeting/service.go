package meeting

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/guardian"
)

var (
	ErrNotFound   = errors.New("meeting not found")
	ErrNoGuardian = errors.New("student has no guardian")
)

type (
	Repository interface {
		CreateMeeting(ctx context.Context, m Meeting, exec ...core.DBExecutor) (Meeting, error)
		// QueryMeetings returns the meetings of a student, newest meeting first.
		QueryMeetings(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Meeting, error)
		GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (Meeting, error)
		UpdateMeeting(ctx context.Context, m Meeting, exec ...core.DBExecutor) (Meeting, error)
		DeleteMeeting(ctx context.Context, id string, exec ...core.DBExecutor) error
		// GetRecipient returns the student and guardian of studentID; ErrNoGuardian when the student has none.
		GetRecipient(ctx context.Context, studentID string, exec ...core.DBExecutor) (Recipient, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, studentID, teacherID string, nm NewMeeting) (Meeting, error)
		QueryByStudent(ctx context.Context, studentID string) ([]Meeting, error)
		GetByID(ctx context.Context, id string) (Meeting, error)
		Update(ctx context.Context, m Meeting, um UpdateMeeting) (Meeting, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

// Create logs a Meeting. When a follow-up is required the guardian of the student is notified by email.
func (svc *Service) Create(ctx context.Context, studentID, teacherID string, nm NewMeeting) (Meeting, error) {
	now := time.Now().UTC()
	m, err := svc.repo.CreateMeeting(ctx, Meeting{
		StudentID:        studentID,
		TeacherID:        teacherID,
		MeetingDate:      nm.MeetingDate.UTC(),
		MeetingType:      nm.MeetingType,
		Subject:          nm.Subject,
		Notes:            nm.Notes,
		Participants:     nm.Participants,
		FollowUpRequired: nm.FollowUpRequired,
		FollowUpDate:     nm.FollowUpDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return Meeting{}, err
	}
	if m, err = svc.repo.GetMeeting(ctx, m.ID); err != nil {
		return Meeting{}, err
	}

	if m.FollowUpRequired {
		svc.sendFollowUpMail(ctx, m)
	}
	return m, nil
}

func (svc *Service) sendFollowUpMail(ctx context.Context, m Meeting) {
	rcpt, err := svc.repo.GetRecipient(ctx, m.StudentID)
	if err != nil {
		if errors.Cause(err) != ErrNoGuardian {
			svc.logger.Error(fmt.Sprintf("meeting %s follow-up: loading recipient: %v", m.ID, err), err)
		}
		return
	}
	// derived import keys are not real mailboxes
	if rcpt.GuardianEmail == "" || guardian.IsSyntheticEmail(rcpt.GuardianEmail) {
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: rcpt.GuardianName, Address: rcpt.GuardianEmail}},
		Subject:      "Meeting follow-up: " + m.Subject,
		TemplateName: "meeting_followup",
		TemplateData: map[string]interface{}{
			"guardian":       rcpt.GuardianName,
			"teacher":        m.TeacherName,
			"student":        rcpt.StudentName,
			"meeting_date":   m.MeetingDate.Format(DateLayout),
			"subject":        m.Subject,
			"follow_up_date": m.FollowUpDate,
			"notes":          m.Notes,
		},
	})
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Meeting, error) {
	return svc.repo.QueryMeetings(ctx, studentID)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Meeting, error) {
	return svc.repo.GetMeeting(ctx, id)
}

func (svc *Service) Update(ctx context.Context, m Meeting, um UpdateMeeting) (Meeting, error) {
	m.MeetingDate = um.MeetingDate.UTC()
	m.MeetingType = um.MeetingType
	m.Subject = um.Subject
	m.Notes = um.Notes
	m.Participants = um.Participants
	m.FollowUpRequired = um.FollowUpRequired
	m.FollowUpDate = um.FollowUpDate
	m.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateMeeting(ctx, m); err != nil {
		return Meeting{}, err
	}
	return svc.repo.GetMeeting(ctx, m.ID)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteMeeting(ctx, id)
}
