package student_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/student"
)

func (env *testEnv) addGuardian(t *testing.T, g guardian.Guardian) guardian.Guardian {
	t.Helper()
	created, err := env.guardianRepo.CreateGuardians(env.ctx, []guardian.Guardian{g})
	require.NoError(t, err)
	return created[0]
}

func (env *testEnv) addStudent(t *testing.T, firstName, className, parentID string) student.Student {
	t.Helper()
	created, err := env.studentRepo.CreateStudents(env.ctx, []student.Student{{
		FirstName: firstName,
		LastName:  "Test",
		ClassID:   env.classIDs[className],
		ParentID:  parentID,
	}})
	require.NoError(t, err)
	return created[0]
}

func siblingNames(siblings []student.Sibling) []string {
	names := make([]string, 0, len(siblings))
	for _, s := range siblings {
		names = append(names, s.FirstName)
	}
	return names
}

func TestSiblings_SameGuardian(t *testing.T) {
	env := newTestEnv(t, "5A", "6B")
	g := env.addGuardian(t, guardian.Guardian{FullName: "Fatma Kaya", Email: "5551112222@parent.local", MotherPhone: "5551112222"})
	other := env.addGuardian(t, guardian.Guardian{FullName: "Fatma K.", Email: "fatma@example.com", MotherPhone: "5551112222"})

	subject := env.addStudent(t, "Ayşe", "5A", g.ID)
	env.addStudent(t, "Zeynep", "6B", g.ID)
	env.addStudent(t, "Can", "5A", g.ID)
	env.addStudent(t, "Berk", "5A", other.ID) // only matches by phone

	siblings, err := env.svc.Siblings(env.ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Can", "Zeynep"}, siblingNames(siblings))
	assert.Equal(t, "6B", siblings[1].ClassName)
	assert.Equal(t, "Test", siblings[1].LastName)
}

func TestSiblings_GuardianPhones(t *testing.T) {
	env := newTestEnv(t, "5A")
	subjectGuardian := env.addGuardian(t, guardian.Guardian{
		FullName: "Fatma Kaya", Email: "5551112222@parent.local", Phone: "5551112222",
		MotherPhone: "5551112222", FatherPhone: "5553334444",
	})
	subject := env.addStudent(t, "Ayşe", "5A", subjectGuardian.ID)

	mother := env.addGuardian(t, guardian.Guardian{FullName: "A", Email: "a@example.com", MotherPhone: "5551112222"})
	father := env.addGuardian(t, guardian.Guardian{FullName: "B", Email: "b@example.com", FatherPhone: "5553334444"})
	legacy := env.addGuardian(t, guardian.Guardian{FullName: "C", Email: "c@example.com", Phone: "5551112222"})
	// phones are compared field by field: a father phone equal to the mother phone does not match
	crossed := env.addGuardian(t, guardian.Guardian{FullName: "D", Email: "d@example.com", FatherPhone: "5551112222"})
	unrelated := env.addGuardian(t, guardian.Guardian{FullName: "E", Email: "e@example.com", MotherPhone: "5550000000"})

	env.addStudent(t, "Mert", "5A", mother.ID)
	env.addStudent(t, "Deniz", "5A", father.ID)
	env.addStudent(t, "Ece", "5A", legacy.ID)
	env.addStudent(t, "Kaan", "5A", crossed.ID)
	env.addStudent(t, "Selin", "5A", unrelated.ID)
	env.addStudent(t, "Umut", "5A", "")

	siblings, err := env.svc.Siblings(env.ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Deniz", "Ece", "Mert"}, siblingNames(siblings))
}

func TestSiblings_LegacyPhone(t *testing.T) {
	env := newTestEnv(t, "5A")
	g := env.addGuardian(t, guardian.Guardian{FullName: "Fatma Kaya", Email: "fatma@example.com", Phone: "5551112222"})
	subject := env.addStudent(t, "Ayşe", "5A", g.ID)

	imported := env.addGuardian(t, guardian.Guardian{
		FullName: "Ali Kaya", Email: "5551112222@parent.local", Phone: "5551112222", FatherPhone: "5551112222",
	})
	env.addStudent(t, "Mert", "5A", imported.ID)

	siblings, err := env.svc.Siblings(env.ctx, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mert"}, siblingNames(siblings))
}

func TestSiblings_None(t *testing.T) {
	env := newTestEnv(t, "5A")
	noPhones := env.addGuardian(t, guardian.Guardian{FullName: "Fatma Kaya", Email: "fatmakaya@parent.local"})
	lookalike := env.addGuardian(t, guardian.Guardian{FullName: "Fatma Kaya", Email: "other@example.com"})

	orphan := env.addStudent(t, "Ayşe", "5A", "")
	withGuardian := env.addStudent(t, "Mert", "5A", noPhones.ID)
	env.addStudent(t, "Ece", "5A", lookalike.ID)
	env.addStudent(t, "Umut", "5A", "")

	tests := []struct {
		name string
		id   string
	}{
		{"no guardian", orphan.ID},
		{"guardian without phones", withGuardian.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			siblings, err := env.svc.Siblings(env.ctx, tt.id)
			require.NoError(t, err)
			assert.NotNil(t, siblings)
			assert.Empty(t, siblings)
		})
	}

	t.Run("unknown student", func(t *testing.T) {
		_, err := env.svc.Siblings(env.ctx, "missing")
		assert.Equal(t, student.ErrNotFound, err)
	})
}
