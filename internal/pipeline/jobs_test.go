package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestJobLifecycle(t *testing.T) {
	job := NewJob("000001", "平安银行", 2023)
	if job.ID != "000001-2023" {
		t.Errorf("job id = %q", job.ID)
	}
	if job.Status != StatusQueued || job.Done() {
		t.Errorf("fresh job should be queued and not done: %+v", job.Snapshot())
	}

	job.SetStatus(StatusDownloading, "download")
	if job.Done() {
		t.Error("downloading job must not be done")
	}

	job.Fail("download", errors.New("connection reset"))
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Error != "connection reset" {
		t.Errorf("snapshot = %+v", snap)
	}
	if !job.Done() {
		t.Error("failed job is terminal")
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []JobStatus{
		StatusCompleted, StatusFailed, StatusDuplicate, StatusSkippedShort, StatusNoSection,
	}
	for _, st := range terminal {
		job := NewJob("000001", "平安银行", 2023)
		job.SetStatus(st, "x")
		if !job.Done() {
			t.Errorf("status %s should be terminal", st)
		}
	}
}

func TestJobStoreCleanup(t *testing.T) {
	s := NewJobStore(time.Minute)

	fresh := NewJob("000001", "平安银行", 2023)
	stale := NewJob("600000", "浦发银行", 2023)
	stale.UpdatedAt = time.Now().Add(-2 * time.Minute)
	s.Put(fresh)
	s.Put(stale)

	s.Cleanup()

	if s.Get(fresh.ID) == nil {
		t.Error("fresh job evicted")
	}
	if s.Get(stale.ID) != nil {
		t.Error("stale job survived cleanup")
	}
	if got := len(s.List()); got != 1 {
		t.Errorf("list length = %d", got)
	}
}

func TestJobStoreResubmitSameKey(t *testing.T) {
	s := NewJobStore(time.Minute)
	first := NewJob("000001", "平安银行", 2023)
	second := NewJob("000001", "平安银行", 2023)
	s.Put(first)
	s.Put(second)
	if len(s.List()) != 1 {
		t.Error("same company and year must collapse onto one entry")
	}
	if s.Get("000001-2023") != second {
		t.Error("latest submission should win")
	}
}
