package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/guardian"
)

// siblingStrategy finds the students sharing a guardian with subject.
type siblingStrategy func(ctx context.Context, subject Student) ([]Student, error)

// Siblings returns the other students presumed to share a guardian with the student, ordered by
// first name. Strategies are tried in order and the first one finding someone wins:
//   - same guardian record
//   - guardian phones: same mother phone, same father phone or same legacy phone
//
// A student without guardian has no siblings.
func (svc *Service) Siblings(ctx context.Context, studentID string) ([]Sibling, error) {
	subject, err := svc.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	siblings := make([]Sibling, 0)
	if subject.ParentID == "" {
		return siblings, nil
	}

	for _, strategy := range []siblingStrategy{svc.byGuardianID, svc.byGuardianPhone} {
		found, err := strategy(ctx, subject)
		if err != nil {
			return nil, errors.Wrap(err, "finding siblings")
		}
		if len(found) > 0 {
			for _, s := range found {
				siblings = append(siblings, Sibling{
					ID:        s.ID,
					FirstName: s.FirstName,
					LastName:  s.LastName,
					ClassName: s.ClassName,
				})
			}
			break
		}
	}
	return siblings, nil
}

func (svc *Service) byGuardianID(ctx context.Context, subject Student) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, &QueryFilter{ParentID: subject.ParentID, ExcludeID: subject.ID})
}

// phoneMatcher holds the guardian phones of a student that others are compared with.
// An empty value never matches.
type phoneMatcher struct {
	motherPhone string
	fatherPhone string
	phone       string
}

func newPhoneMatcher(g guardian.Guardian) phoneMatcher {
	return phoneMatcher{motherPhone: g.MotherPhone, fatherPhone: g.FatherPhone, phone: g.Phone}
}

func (pm phoneMatcher) isEmpty() bool {
	return pm.motherPhone == "" && pm.fatherPhone == "" && pm.phone == ""
}

func (pm phoneMatcher) matches(g guardian.Guardian) bool {
	return (pm.motherPhone != "" && g.MotherPhone == pm.motherPhone) ||
		(pm.fatherPhone != "" && g.FatherPhone == pm.fatherPhone) ||
		(pm.phone != "" && g.Phone == pm.phone)
}

func (svc *Service) byGuardianPhone(ctx context.Context, subject Student) ([]Student, error) {
	if subject.Guardian == nil {
		return nil, nil
	}
	pm := newPhoneMatcher(*subject.Guardian)
	if pm.isEmpty() {
		return nil, nil
	}

	candidates, err := svc.repo.QueryStudents(ctx, &QueryFilter{ExcludeID: subject.ID, HasGuardian: true})
	if err != nil {
		return nil, err
	}
	found := make([]Student, 0)
	for _, c := range candidates {
		if c.Guardian != nil && pm.matches(*c.Guardian) {
			found = append(found, c)
		}
	}
	return found, nil
}
