package inmemdb

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/class"
	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/institution"
	"github.com/aykutjm/ogrencim/core/meeting"
	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/subject"
	"github.com/aykutjm/ogrencim/core/teacher"
	"github.com/aykutjm/ogrencim/core/user"
)

// DB is an in-memory store. It has no transactions: the services run without a core.DB.
type DB struct {
	mutex sync.RWMutex

	users        map[string]*user.User
	institutions map[string]*institution.Institution
	classes      map[string]*class.Class
	subjects     map[string]*subject.Subject
	teachers     map[string]*teacher.Teacher
	guardians    map[string]*guardian.Guardian
	students     map[string]*student.Student
	ratings      map[string]*rating.Rating
	meetings     map[string]*meeting.Meeting
}

func NewDB() *DB {
	return &DB{
		users:        make(map[string]*user.User),
		institutions: make(map[string]*institution.Institution),
		classes:      make(map[string]*class.Class),
		subjects:     make(map[string]*subject.Subject),
		teachers:     make(map[string]*teacher.Teacher),
		guardians:    make(map[string]*guardian.Guardian),
		students:     make(map[string]*student.Student),
		ratings:      make(map[string]*rating.Rating),
		meetings:     make(map[string]*meeting.Meeting),
	}
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// containsFold reports whether any of values contains substr, ignoring case.
func containsFold(substr string, values ...string) bool {
	substr = strings.ToLower(substr)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), substr) {
			return true
		}
	}
	return false
}

func lessFold(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

var errTaken = errors.New("already taken")
