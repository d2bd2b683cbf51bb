package inmemdb

import (
	"context"
	"sort"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/meeting"
	"github.com/aykutjm/ogrencim/core/student"
)

type meetingRepository struct {
	db *DB
}

var _ meeting.Repository = (*meetingRepository)(nil)

func NewMeetingRepository(db *DB) *meetingRepository {
	return &meetingRepository{db: db}
}

// load joins the teacher name.
func (repo *meetingRepository) load(m meeting.Meeting) meeting.Meeting {
	m.TeacherName = ""
	if tch, ok := repo.db.teachers[m.TeacherID]; ok {
		m.TeacherName = tch.FullName
	}
	return m
}

func (repo *meetingRepository) CreateMeeting(_ context.Context, m meeting.Meeting, _ ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	m.ID = newID(m.ID)
	repo.db.meetings[m.ID] = &m
	return repo.load(m), nil
}

func (repo *meetingRepository) QueryMeetings(_ context.Context, studentID string, _ ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	meetings := make([]meeting.Meeting, 0)
	for _, m := range repo.db.meetings {
		if m.StudentID == studentID {
			meetings = append(meetings, repo.load(*m))
		}
	}
	sort.SliceStable(meetings, func(i, j int) bool { return meetings[i].MeetingDate.After(meetings[j].MeetingDate) })
	return meetings, nil
}

func (repo *meetingRepository) GetMeeting(_ context.Context, id string, _ ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if m, ok := repo.db.meetings[id]; ok {
		return repo.load(*m), nil
	}
	return meeting.Meeting{}, meeting.ErrNotFound
}

func (repo *meetingRepository) UpdateMeeting(_ context.Context, m meeting.Meeting, _ ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.meetings[m.ID]; !ok {
		return meeting.Meeting{}, meeting.ErrNotFound
	}
	repo.db.meetings[m.ID] = &m
	return repo.load(m), nil
}

func (repo *meetingRepository) DeleteMeeting(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.meetings[id]; !ok {
		return meeting.ErrNotFound
	}
	delete(repo.db.meetings, id)
	return nil
}

func (repo *meetingRepository) GetRecipient(_ context.Context, studentID string, _ ...core.DBExecutor) (meeting.Recipient, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	s, ok := repo.db.students[studentID]
	if !ok {
		return meeting.Recipient{}, student.ErrNotFound
	}
	g, ok := repo.db.guardians[s.ParentID]
	if !ok {
		return meeting.Recipient{}, meeting.ErrNoGuardian
	}
	return meeting.Recipient{
		StudentName:   s.FirstName + " " + s.LastName,
		GuardianName:  g.FullName,
		GuardianEmail: g.Email,
	}, nil
}
