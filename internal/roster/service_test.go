package roster

import (
	"context"
	"errors"
	"testing"
)

// fakeStore applies imports against an in-memory roster keyed by student_id.
type fakeStore struct {
	students map[string]Student
	importEd []ImportRow
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{students: make(map[string]Student)}
}

func (f *fakeStore) Create(_ context.Context, s Student) (Student, error) {
	if _, ok := f.students[s.StudentID]; ok {
		return Student{}, ErrDuplicateStudentID
	}
	f.students[s.StudentID] = s
	return s, nil
}

func (f *fakeStore) GetByStudentID(_ context.Context, studentID string) (*Student, error) {
	if s, ok := f.students[studentID]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeStore) List(context.Context) ([]Student, error) {
	var out []Student
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, studentID string) (bool, error) {
	if _, ok := f.students[studentID]; !ok {
		return false, nil
	}
	delete(f.students, studentID)
	return true, nil
}

func (f *fakeStore) Import(_ context.Context, rows []ImportRow) (int, int, error) {
	if f.failWith != nil {
		return 0, 0, f.failWith
	}
	f.importEd = rows
	created, updated := 0, 0
	for _, row := range rows {
		if _, ok := f.students[row.StudentID]; ok {
			updated++
		} else {
			created++
		}
		f.students[row.StudentID] = Student{StudentID: row.StudentID, Name: row.Name, Email: row.Email}
	}
	return created, updated, nil
}

func TestImportLastWriteWinsWithinBatch(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	summary, err := svc.Import(context.Background(), []ImportRow{
		{StudentID: "A1", Name: "X"},
		{StudentID: "A1", Name: "Y"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Created != 1 || summary.Updated != 0 {
		t.Fatalf("summary = %+v, want created=1 updated=0", summary)
	}
	if got := store.students["A1"].Name; got != "Y" {
		t.Fatalf("stored name = %q, want Y (last row wins)", got)
	}
}

func TestImportSkipsRowsWithoutIdentifier(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	summary, err := svc.Import(context.Background(), []ImportRow{
		{StudentID: "", Name: "ghost"},
		{StudentID: "   ", Name: "ghost too"},
		{StudentID: "B2", Name: "Brian"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Created != 1 || summary.Updated != 0 {
		t.Fatalf("summary = %+v, want created=1 updated=0", summary)
	}
	if len(store.importEd) != 1 {
		t.Fatalf("%d rows reached the store, want 1", len(store.importEd))
	}
}

func TestImportCountsCreatedAndUpdated(t *testing.T) {
	store := newFakeStore()
	store.students["A1"] = Student{StudentID: "A1", Name: "old"}
	svc := NewService(store)

	summary, err := svc.Import(context.Background(), []ImportRow{
		{StudentID: "A1", Name: "new name", Email: "a@example.com"},
		{StudentID: "B2", Name: "Brian"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Created != 1 || summary.Updated != 1 {
		t.Fatalf("summary = %+v, want created=1 updated=1", summary)
	}
	if store.students["A1"].Name != "new name" {
		t.Fatal("existing student was not updated")
	}
}

func TestImportEmptyBatchTouchesNothing(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	summary, err := svc.Import(context.Background(), []ImportRow{{Name: "no id"}})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Created != 0 || summary.Updated != 0 {
		t.Fatalf("summary = %+v, want zeros", summary)
	}
	if store.importEd != nil {
		t.Fatal("store should not be called for an empty batch")
	}
}

func TestImportPropagatesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("connection lost")
	svc := NewService(store)

	if _, err := svc.Import(context.Background(), []ImportRow{{StudentID: "A1"}}); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestAddValidatesRequiredFields(t *testing.T) {
	svc := NewService(newFakeStore())

	if _, err := svc.Add(context.Background(), "", "Ada", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
	if _, err := svc.Add(context.Background(), "A1", "  ", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}

	st, err := svc.Add(context.Background(), " A1 ", " Ada ", " a@example.com ")
	if err != nil {
		t.Fatal(err)
	}
	if st.StudentID != "A1" || st.Name != "Ada" || st.Email != "a@example.com" {
		t.Fatalf("fields not trimmed: %+v", st)
	}
}

func TestAddRejectsDuplicateIdentifier(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Add(context.Background(), "A1", "Ada", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Add(context.Background(), "A1", "Imposter", ""); !errors.Is(err, ErrDuplicateStudentID) {
		t.Fatalf("err = %v, want ErrDuplicateStudentID", err)
	}
}

func TestGetAndDelete(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if _, err := svc.Add(context.Background(), "A1", "Ada", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), "A1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(context.Background(), "A1"); !errors.Is(err, ErrNotFound) {
		t.Fatal("student should be gone after delete")
	}
}
