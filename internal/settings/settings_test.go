package settings

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	current ClassSettings
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{current: ClassSettings{
		ClassStartTime:       DefaultStartTime,
		LateThresholdMinutes: DefaultThresholdMinutes,
	}}
}

func (f *fakeStore) Get(context.Context) (ClassSettings, error) {
	return f.current, nil
}

func (f *fakeStore) Update(_ context.Context, startTime string, thresholdMinutes int) (ClassSettings, error) {
	f.updates++
	f.current.ClassStartTime = startTime
	f.current.LateThresholdMinutes = thresholdMinutes
	return f.current, nil
}

func TestUpdateChangesBothFields(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	s, err := svc.Update(context.Background(), "09:15", "45")
	if err != nil {
		t.Fatal(err)
	}
	if s.ClassStartTime != "09:15" || s.LateThresholdMinutes != 45 {
		t.Fatalf("settings = %+v", s)
	}
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	s, err := svc.Update(context.Background(), "", "10")
	if err != nil {
		t.Fatal(err)
	}
	if s.ClassStartTime != DefaultStartTime {
		t.Fatalf("start time changed to %q", s.ClassStartTime)
	}
	if s.LateThresholdMinutes != 10 {
		t.Fatalf("threshold = %d, want 10", s.LateThresholdMinutes)
	}
}

func TestUpdateRejectsInvalidInputWithoutWriting(t *testing.T) {
	cases := []struct {
		name      string
		start     string
		threshold string
		want      error
	}{
		{"negative threshold", "", "-5", ErrInvalidThreshold},
		{"non-numeric threshold", "", "soon", ErrInvalidThreshold},
		{"fractional threshold", "", "7.5", ErrInvalidThreshold},
		{"malformed start", "25:99", "", ErrInvalidStartTime},
		{"garbage start", "morning", "", ErrInvalidStartTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			svc := NewService(store)
			if _, err := svc.Update(context.Background(), tc.start, tc.threshold); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if store.updates != 0 {
				t.Fatal("store was written despite invalid input")
			}
			if store.current.ClassStartTime != DefaultStartTime || store.current.LateThresholdMinutes != DefaultThresholdMinutes {
				t.Fatal("stored settings changed despite invalid input")
			}
		})
	}
}

func TestUpdateAcceptsZeroThreshold(t *testing.T) {
	svc := NewService(newFakeStore())
	s, err := svc.Update(context.Background(), "", "0")
	if err != nil {
		t.Fatal(err)
	}
	if s.LateThresholdMinutes != 0 {
		t.Fatalf("threshold = %d, want 0", s.LateThresholdMinutes)
	}
}

func TestUpdateNormalizesStartTime(t *testing.T) {
	svc := NewService(newFakeStore())
	s, err := svc.Update(context.Background(), "09:15:30", "")
	if err != nil {
		t.Fatal(err)
	}
	if s.ClassStartTime != "09:15" {
		t.Fatalf("start time = %q, want 09:15", s.ClassStartTime)
	}
}

func TestScheduleDerivesFromSettings(t *testing.T) {
	svc := NewService(newFakeStore())
	sched, err := svc.Schedule(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sched.Start.Hour() != 8 || sched.Start.Minute() != 0 {
		t.Fatalf("start = %v, want 08:00", sched.Start)
	}
	if sched.LateThresholdMinutes != DefaultThresholdMinutes {
		t.Fatalf("threshold = %d, want %d", sched.LateThresholdMinutes, DefaultThresholdMinutes)
	}
}
