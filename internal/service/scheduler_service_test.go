package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestBuildDailySpec(t *testing.T) {
	cases := map[string]string{
		"09:30": "0 30 9 * * *",
		"0:00":  "0 0 0 * * *",
		"23:59": "0 59 23 * * *",
	}
	for in, want := range cases {
		got, err := buildDailySpec(in)
		if err != nil {
			t.Fatalf("buildDailySpec(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("buildDailySpec(%q) = %q, want %q", in, got, want)
		}
	}

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "1:2:3"} {
		if _, err := buildDailySpec(bad); err == nil {
			t.Fatalf("buildDailySpec(%q): expected error", bad)
		}
	}
}

func TestSchedulerService_Register(t *testing.T) {
	log, _ := test.NewNullLogger()
	s := NewSchedulerService(time.UTC, log)
	noop := func(context.Context) error { return nil }

	if _, err := s.ScheduleInterval("digest", 0, noop); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := s.ScheduleInterval("digest", time.Hour, noop); err != nil {
		t.Fatalf("ScheduleInterval: %v", err)
	}
	if _, err := s.ScheduleDaily("digest", "25:00", noop); err == nil {
		t.Fatalf("expected error for invalid time")
	}
	if _, err := s.ScheduleDaily("digest", "08:15", noop); err != nil {
		t.Fatalf("ScheduleDaily: %v", err)
	}
	if n := len(s.cron.Entries()); n != 2 {
		t.Fatalf("entries = %d", n)
	}
	s.Start()
	s.Stop()
}

func TestSchedulerService_WrapLogsFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	s := NewSchedulerService(time.UTC, log)

	var deadline bool
	s.wrap("ok", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	})()
	if !deadline {
		t.Fatalf("job context must carry a deadline")
	}
	if entry := hook.LastEntry(); entry == nil || entry.Message != "job finished" || entry.Data["job"] != "ok" {
		t.Fatalf("unexpected entry %+v", entry)
	}

	s.wrap("broken", func(context.Context) error { return errors.New("boom") })()
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel || entry.Data["job"] != "broken" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}
