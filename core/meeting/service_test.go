package meeting_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/class"
	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/meeting"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/teacher"
	inmemdb "github.com/aykutjm/ogrencim/storage/database/inmem"
	"github.com/aykutjm/ogrencim/tests"
)

// recordingMailer keeps the messages it is asked to send.
type recordingMailer struct {
	sent []*core.EmailMessage
}

func (m *recordingMailer) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type fixture struct {
	ctx       context.Context
	db        *inmemdb.DB
	mailer    *recordingMailer
	svc       *meeting.Service
	teacherID string
	classID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := inmemdb.NewDB()
	mailer := new(recordingMailer)

	cls, err := inmemdb.NewClassRepository(db).CreateClass(ctx, class.Class{Name: "5A"})
	require.NoError(t, err)
	tch, err := inmemdb.NewTeacherRepository(db).CreateTeacher(ctx, teacher.Teacher{FullName: "Ayla Hoca", Email: "ayla@okul.tr"})
	require.NoError(t, err)

	logger := testutil.NewLogger(testutil.NewConfig())
	return &fixture{
		ctx:       ctx,
		db:        db,
		mailer:    mailer,
		svc:       meeting.NewService(inmemdb.NewMeetingRepository(db), mailer, logger),
		teacherID: tch.ID,
		classID:   cls.ID,
	}
}

func (f *fixture) addStudent(t *testing.T, g *guardian.Guardian) student.Student {
	t.Helper()
	s := student.Student{FirstName: "Ayşe", LastName: "Kaya", ClassID: f.classID}
	if g != nil {
		created, err := inmemdb.NewGuardianRepository(f.db).CreateGuardians(f.ctx, []guardian.Guardian{*g})
		require.NoError(t, err)
		s.ParentID = created[0].ID
	}
	created, err := inmemdb.NewStudentRepository(f.db).CreateStudents(f.ctx, []student.Student{s})
	require.NoError(t, err)
	return created[0]
}

func newMeeting(followUp bool) meeting.NewMeeting {
	nm := meeting.NewMeeting{
		MeetingDate:      time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
		MeetingType:      meeting.TypePhone,
		Subject:          "Devamsızlık",
		Notes:            "Haftada iki gün gelmedi",
		FollowUpRequired: followUp,
	}
	if followUp {
		nm.FollowUpDate = "2026-10-15"
	}
	return nm
}

func TestService_Create(t *testing.T) {
	t.Run("follow-up mails the guardian", func(t *testing.T) {
		f := newFixture(t)
		s := f.addStudent(t, &guardian.Guardian{FullName: "Fatma Kaya", Email: "fatma@example.com"})

		m, err := f.svc.Create(f.ctx, s.ID, f.teacherID, newMeeting(true))
		require.NoError(t, err)
		assert.Equal(t, "Ayla Hoca", m.TeacherName)
		assert.Equal(t, "2026-10-15", m.FollowUpDate)

		require.Len(t, f.mailer.sent, 1)
		msg := f.mailer.sent[0]
		assert.Equal(t, "fatma@example.com", msg.To[0].Address)
		assert.Equal(t, "meeting_followup", msg.TemplateName)
		data := msg.TemplateData.(map[string]interface{})
		assert.Equal(t, "Ayşe Kaya", data["student"])
		assert.Equal(t, "Ayla Hoca", data["teacher"])
		assert.Equal(t, "2026-10-01", data["meeting_date"])
	})

	tests := []struct {
		name     string
		guardian *guardian.Guardian
		followUp bool
	}{
		{"no follow-up", &guardian.Guardian{FullName: "Fatma Kaya", Email: "fatma@example.com"}, false},
		{"synthetic address", &guardian.Guardian{FullName: "Fatma Kaya", Email: "5551112222@parent.local"}, true},
		{"no guardian", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := f.addStudent(t, tt.guardian)

			m, err := f.svc.Create(f.ctx, s.ID, f.teacherID, newMeeting(tt.followUp))
			require.NoError(t, err)
			assert.NotEmpty(t, m.ID)
			assert.Empty(t, f.mailer.sent)
		})
	}
}

func TestService_QueryByStudent(t *testing.T) {
	f := newFixture(t)
	s := f.addStudent(t, nil)

	older := newMeeting(false)
	older.MeetingDate = older.MeetingDate.AddDate(0, -1, 0)
	_, err := f.svc.Create(f.ctx, s.ID, f.teacherID, older)
	require.NoError(t, err)
	newer, err := f.svc.Create(f.ctx, s.ID, f.teacherID, newMeeting(false))
	require.NoError(t, err)

	meetings, err := f.svc.QueryByStudent(f.ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, newer.ID, meetings[0].ID)

	none, err := f.svc.QueryByStudent(f.ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)
	s := f.addStudent(t, &guardian.Guardian{FullName: "Fatma Kaya", Email: "fatma@example.com"})

	m, err := f.svc.Create(f.ctx, s.ID, f.teacherID, newMeeting(true))
	require.NoError(t, err)

	um := meeting.UpdateMeeting(newMeeting(false))
	um.MeetingType = meeting.TypeOnline
	updated, err := f.svc.Update(f.ctx, m, um)
	require.NoError(t, err)
	assert.Equal(t, meeting.TypeOnline, updated.MeetingType)
	assert.False(t, updated.FollowUpRequired)
	assert.Equal(t, "", updated.FollowUpDate)
	assert.Equal(t, "Ayla Hoca", updated.TeacherName)

	require.NoError(t, f.svc.Delete(f.ctx, m.ID))
	_, err = f.svc.GetByID(f.ctx, m.ID)
	assert.Equal(t, meeting.ErrNotFound, err)
}
