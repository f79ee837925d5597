package models

import (
	"testing"
	"time"
)

func TestScheduleTransitions(t *testing.T) {
	cases := []struct {
		from, to ScheduleStatus
		allowed  bool
	}{
		{ScheduleActive, ScheduleBusy, true},
		{ScheduleActive, ScheduleCancelled, true},
		{ScheduleActive, ScheduleCompleted, false},
		{ScheduleBusy, ScheduleCompleted, true},
		{ScheduleBusy, ScheduleCancelled, true},
		{ScheduleBusy, ScheduleActive, false},
		{ScheduleCompleted, ScheduleBusy, false},
		{ScheduleCompleted, ScheduleCancelled, false},
		{ScheduleCancelled, ScheduleActive, false},
		{ScheduleCancelled, ScheduleCancelled, true}, // self-transition is a no-op
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestScheduleTransitionToStampsTimestamps(t *testing.T) {
	now := time.Now()

	s := &Schedule{Status: ScheduleBusy}
	if err := s.TransitionTo(ScheduleCompleted, now); err != nil {
		t.Fatalf("TransitionTo: %v", err)
	}
	if s.CompletedAt == nil || !s.CompletedAt.Equal(now) {
		t.Fatalf("expected CompletedAt stamped with %v, got %v", now, s.CompletedAt)
	}

	s = &Schedule{Status: ScheduleCompleted}
	if err := s.TransitionTo(ScheduleBusy, now); err == nil {
		t.Fatal("expected completed -> busy to fail")
	}
}

func TestScheduleOverlaps(t *testing.T) {
	existing := &Schedule{TimeFrom: "09:00", TimeTo: "10:00"}

	cases := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"candidate start inside", "09:30", "10:30", true},
		{"candidate end inside", "08:30", "09:30", true},
		{"candidate contains existing", "08:00", "11:00", true},
		{"identical window", "09:00", "10:00", true},
		{"before, touching", "08:00", "09:00", false},
		{"after, touching", "10:00", "11:00", false},
		{"disjoint before", "07:00", "08:00", false},
		{"disjoint after", "11:00", "12:00", false},
	}
	for _, c := range cases {
		if got := existing.Overlaps(c.from, c.to); got != c.want {
			t.Errorf("%s: Overlaps(%s, %s) = %v, want %v", c.name, c.from, c.to, got, c.want)
		}
	}
}
