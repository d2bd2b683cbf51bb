package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/meeting"
	"github.com/aykutjm/ogrencim/core/student"
)

const meetingsTable = "parent_meetings"

var meetingColumns = []string{
	"id", "student_id", "teacher_id", "meeting_date", "meeting_type", "subject", "notes",
	"participants", "follow_up_required", "follow_up_date", "created_at", "updated_at",
}

type meetingRow struct {
	ID               string      `boil:"id"`
	StudentID        string      `boil:"student_id"`
	TeacherID        string      `boil:"teacher_id"`
	MeetingDate      time.Time   `boil:"meeting_date"`
	MeetingType      string      `boil:"meeting_type"`
	Subject          string      `boil:"subject"`
	Notes            null.String `boil:"notes"`
	Participants     null.String `boil:"participants"`
	FollowUpRequired bool        `boil:"follow_up_required"`
	FollowUpDate     null.Time   `boil:"follow_up_date"`
	CreatedAt        time.Time   `boil:"created_at"`
	UpdatedAt        time.Time   `boil:"updated_at"`
	TeacherName      null.String `boil:"teacher_name"`
}

type meetingRepository struct {
	repository
}

var _ meeting.Repository = (*meetingRepository)(nil)

func NewMeetingRepository(exec core.DBExecutor) *meetingRepository {
	return &meetingRepository{repository{exec: exec}}
}

func (repo meetingRepository) boil(m meeting.Meeting) []interface{} {
	return []interface{}{
		m.ID,
		m.StudentID,
		m.TeacherID,
		m.MeetingDate.UTC(),
		m.MeetingType,
		m.Subject,
		nullString(m.Notes),
		nullString(m.Participants),
		m.FollowUpRequired,
		nullString(m.FollowUpDate),
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	}
}

func (repo meetingRepository) unboil(row *meetingRow) meeting.Meeting {
	m := meeting.Meeting{
		ID:               row.ID,
		StudentID:        row.StudentID,
		TeacherID:        row.TeacherID,
		MeetingDate:      row.MeetingDate,
		MeetingType:      row.MeetingType,
		Subject:          row.Subject,
		Notes:            row.Notes.String,
		Participants:     row.Participants.String,
		FollowUpRequired: row.FollowUpRequired,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		TeacherName:      row.TeacherName.String,
	}
	if row.FollowUpDate.Valid {
		m.FollowUpDate = row.FollowUpDate.Time.Format(meeting.DateLayout)
	}
	return m
}

func selectMeetings(mods ...qm.QueryMod) []qm.QueryMod {
	cols := make([]string, 0, len(meetingColumns)+1)
	for _, col := range meetingColumns {
		cols = append(cols, "m."+col)
	}
	cols = append(cols, "t.full_name AS teacher_name")
	return append([]qm.QueryMod{
		qm.Select(cols...),
		qm.From(quote(meetingsTable) + " AS m"),
		qm.LeftOuterJoin(quote(teachersTable) + " AS t ON t.id = m.teacher_id"),
	}, mods...)
}

func (repo meetingRepository) CreateMeeting(ctx context.Context, m meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	m.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(meetingsTable, meetingColumns, 1), repo.boil(m)...)
	if err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "inserting meeting")
	}
	return m, nil
}

func (repo meetingRepository) QueryMeetings(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return []meeting.Meeting{}, nil
	}
	q := newQuery(selectMeetings(qm.Where("m.student_id = ?", studentID), qm.OrderBy("m.meeting_date DESC"))...)

	var rows []*meetingRow
	if err := q.Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying meetings")
	}
	meetings := make([]meeting.Meeting, 0, len(rows))
	for _, row := range rows {
		meetings = append(meetings, repo.unboil(row))
	}
	return meetings, nil
}

func (repo meetingRepository) GetMeeting(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	if _, err := uuid.Parse(id); err != nil {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	row := new(meetingRow)
	if err := newQuery(selectMeetings(qm.Where("m.id = ?", id))...).Bind(ctx, repo.getExec(exec), row); err != nil {
		return meeting.Meeting{}, trapNoRowsErr(err, meeting.ErrNotFound, "finding meeting")
	}
	return repo.unboil(row), nil
}

func (repo meetingRepository) UpdateMeeting(ctx context.Context, m meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	args := append(repo.boil(m)[1:], m.ID)
	err := execOne(ctx, repo.getExec(exec), meeting.ErrNotFound, updateQuery(meetingsTable, meetingColumns[1:]), args...)
	if err != nil {
		if err == meeting.ErrNotFound {
			return meeting.Meeting{}, err
		}
		return meeting.Meeting{}, errors.Wrap(err, "updating meeting")
	}
	return m, nil
}

func (repo meetingRepository) DeleteMeeting(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), meeting.ErrNotFound, deleteQuery(meetingsTable), id)
	if err != nil && err != meeting.ErrNotFound {
		return errors.Wrap(err, "deleting meeting")
	}
	return err
}

type recipientRow struct {
	FirstName     string      `boil:"first_name"`
	LastName      string      `boil:"last_name"`
	GuardianName  null.String `boil:"guardian_name"`
	GuardianEmail null.String `boil:"guardian_email"`
}

func (repo meetingRepository) GetRecipient(ctx context.Context, studentID string, exec ...core.DBExecutor) (meeting.Recipient, error) {
	if _, err := uuid.Parse(studentID); err != nil {
		return meeting.Recipient{}, student.ErrNotFound
	}
	row := new(recipientRow)
	q := newQuery(
		qm.Select("s.first_name", "s.last_name", "p.full_name AS guardian_name", "p.email AS guardian_email"),
		qm.From(quote(studentsTable)+" AS s"),
		qm.LeftOuterJoin(quote(guardiansTable)+" AS p ON p.id = s.parent_id"),
		qm.Where("s.id = ?", studentID),
	)
	if err := q.Bind(ctx, repo.getExec(exec), row); err != nil {
		return meeting.Recipient{}, trapNoRowsErr(err, student.ErrNotFound, "finding meeting recipient")
	}
	if !row.GuardianEmail.Valid {
		return meeting.Recipient{}, meeting.ErrNoGuardian
	}
	return meeting.Recipient{
		StudentName:   row.FirstName + " " + row.LastName,
		GuardianName:  row.GuardianName.String,
		GuardianEmail: row.GuardianEmail.String,
	}, nil
}
