package scheduler

import "testing"

func TestAddJobValidation(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	id, err := s.AddJob("0 * * * *", func() {})
	if err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	s.RemoveJob(id)

	if _, err := s.AddJob("not a cron spec", func() {}); err == nil {
		t.Error("invalid expression accepted")
	}
	// 6-field (with seconds) specs are not part of the accepted format.
	if _, err := s.AddJob("0 0 * * * *", func() {}); err == nil {
		t.Error("6-field expression accepted")
	}
}
