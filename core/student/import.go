package student

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/class"
	"github.com/aykutjm/ogrencim/core/guardian"
)

var (
	ErrUnknownClass    = errors.New("class not found")
	ErrNothingImported = errors.New("no students imported")
	errMissingFields   = errors.New("all students need a full name and a class name")
)

// BulkRecord is one row of a bulk student import.
type BulkRecord struct {
	FullName    string `json:"fullName"`
	ClassName   string `json:"className"`
	MotherName  string `json:"motherName"`
	MotherPhone string `json:"motherPhone"`
	FatherName  string `json:"fatherName"`
	FatherPhone string `json:"fatherPhone"`
}

func (r BulkRecord) contact() guardian.Contact {
	return guardian.Contact{
		MotherName:  r.MotherName,
		MotherPhone: r.MotherPhone,
		FatherName:  r.FatherName,
		FatherPhone: r.FatherPhone,
	}
}

// splitName returns the first word as first name and the remaining words as last name.
// A single word is used for both.
func splitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

type ImportOptions struct {
	// InstitutionID scopes the class lookup and is stamped on created guardians and students.
	InstitutionID string
}

// SkippedRow is an import row that was not inserted.
type SkippedRow struct {
	Row       int // 0-based index in the import records
	FullName  string
	ClassName string
	Reason    error
}

func (sr SkippedRow) String() string {
	if sr.Reason == ErrUnknownClass {
		return fmt.Sprintf("class not found: %s (%s)", sr.ClassName, sr.FullName)
	}
	return fmt.Sprintf("row %d (%s): %v", sr.Row, sr.FullName, sr.Reason)
}

// ChunkFailure is a chunk of resolved students whose insert failed. From and To (exclusive) are
// 0-based positions among the resolved students.
type ChunkFailure struct {
	From int
	To   int
	Err  error
}

func (cf ChunkFailure) String() string {
	return fmt.Sprintf("batch insert failed (%d-%d): %v", cf.From, cf.To, cf.Err)
}

// ImportResult is the outcome of a bulk import.
type ImportResult struct {
	Inserted          []Student
	Skipped           []SkippedRow
	FailedChunks      []ChunkFailure
	GuardiansResolved int // existing + created
	GuardiansCreated  int
}

func (r ImportResult) Count() int {
	return len(r.Inserted)
}

// Messages returns the skipped rows then the failed chunks as human readable strings.
func (r ImportResult) Messages() []string {
	msgs := make([]string, 0, len(r.Skipped)+len(r.FailedChunks))
	for _, sr := range r.Skipped {
		msgs = append(msgs, sr.String())
	}
	for _, cf := range r.FailedChunks {
		msgs = append(msgs, cf.String())
	}
	return msgs
}

// DependencyError is returned when the guardians of an import could not be created.
// Nothing is imported in that case.
type DependencyError struct {
	Err error
}

func (e *DependencyError) Error() string { return e.Err.Error() }
func (e *DependencyError) Unwrap() error { return e.Err }

func checkRecords(records []BulkRecord) error {
	for i, r := range records {
		var flds []core.FieldError
		if strings.TrimSpace(r.FullName) == "" {
			flds = append(flds, core.FieldError{Field: fmt.Sprintf("students[%d].fullName", i), Error: "this field is required"})
		}
		if strings.TrimSpace(r.ClassName) == "" {
			flds = append(flds, core.FieldError{Field: fmt.Sprintf("students[%d].className", i), Error: "this field is required"})
		}
		if len(flds) > 0 {
			return core.NewValidationError(errors.Wrapf(errMissingFields, "row %d", i), flds...)
		}
	}
	return nil
}

// Import creates the students of records along with the guardians they reference.
//
// Guardians are deduplicated on their derived key, within records and against the stored ones,
// and created in one insert; if that fails nothing is imported and a *DependencyError is returned.
// Rows with an unknown class are skipped. Students are inserted in chunks: a failing chunk is
// reported and the next ones still run. When no student could be inserted, ErrNothingImported is
// returned along with the result.
func (svc *Service) Import(ctx context.Context, records []BulkRecord, opts ImportOptions) (ImportResult, error) {
	if err := checkRecords(records); err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		result, err = svc.runImport(ctx, records, opts, exec)
		if err != nil {
			return err
		}
		if result.Count() == 0 {
			return ErrNothingImported
		}
		return nil
	})
	if err != nil {
		if errors.Cause(err) == ErrNothingImported {
			return result, ErrNothingImported
		}
		var depErr *DependencyError
		if errors.As(err, &depErr) {
			return ImportResult{}, depErr
		}
		return ImportResult{}, errors.Wrap(err, "importing students")
	}
	return result, nil
}

func (svc *Service) runImport(ctx context.Context, records []BulkRecord, opts ImportOptions, exec core.DBExecutor) (ImportResult, error) {
	var result ImportResult

	classes, err := svc.classRepo.QueryClasses(ctx, &class.QueryFilter{InstitutionID: opts.InstitutionID}, exec)
	if err != nil {
		return result, errors.Wrap(err, "querying classes")
	}
	classIDs := class.NameIndex(classes)

	// one guardian per key, the first row carrying a key defines it
	keys := make([]guardian.Key, len(records))
	pending := make([]guardian.Guardian, 0)
	seen := make(map[string]bool)
	for i, r := range records {
		c := r.contact()
		key := guardian.DeriveKey(c)
		keys[i] = key
		if key.IsZero() || seen[key.Email] {
			continue
		}
		seen[key.Email] = true
		pending = append(pending, c.Guardian(key))
	}

	res, err := guardian.Resolve(ctx, svc.guardianRepo, pending, opts.InstitutionID, exec)
	if err != nil {
		var createErr *guardian.CreateError
		if errors.As(err, &createErr) {
			return result, &DependencyError{Err: createErr}
		}
		return result, err
	}
	result.GuardiansResolved = len(res.IDs)
	result.GuardiansCreated = res.Created

	now := time.Now().UTC()
	resolved := make([]Student, 0, len(records))
	for i, r := range records {
		classID, ok := classIDs[r.ClassName]
		if !ok {
			result.Skipped = append(result.Skipped, SkippedRow{
				Row:       i,
				FullName:  r.FullName,
				ClassName: r.ClassName,
				Reason:    ErrUnknownClass,
			})
			continue
		}

		first, last := splitName(r.FullName)
		s := Student{
			FirstName:     first,
			LastName:      last,
			ClassID:       classID,
			InstitutionID: opts.InstitutionID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if !keys[i].IsZero() {
			s.ParentID = res.IDs[keys[i].Email]
		}
		resolved = append(resolved, s)
	}

	for from := 0; from < len(resolved); from += svc.chunkSize {
		to := from + svc.chunkSize
		if to > len(resolved) {
			to = len(resolved)
		}

		var inserted []Student
		err := core.WithSavepoint(ctx, exec, "import_chunk", func() error {
			var err error
			inserted, err = svc.repo.CreateStudents(ctx, resolved[from:to], exec)
			return err
		})
		if err != nil {
			result.FailedChunks = append(result.FailedChunks, ChunkFailure{From: from, To: to, Err: errors.Cause(err)})
			continue
		}
		result.Inserted = append(result.Inserted, inserted...)
	}
	return result, nil
}
