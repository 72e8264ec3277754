package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

// TaskLister is the read side of the store the digest needs.
type TaskLister interface {
	ListOwners(ctx context.Context) ([]string, error)
	GetTasks(ctx context.Context, userID string, q repository.TaskQuery) ([]model.Task, error)
}

// Notifier delivers a rendered digest.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Digest is an aggregate over all owners. It never carries task names or user ids.
type Digest struct {
	GeneratedAt time.Time
	Owners      int
	Overdue     int
	DueToday    int
}

// DigestService counts overdue and soon-due tasks through the store's own filters.
type DigestService struct {
	tasks    TaskLister
	notifier Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewDigestService(tasks TaskLister, notifier Notifier, log logrus.FieldLogger) *DigestService {
	return &DigestService{
		tasks:    tasks,
		notifier: notifier,
		log:      log.WithField("component", "digest"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *DigestService) Build(ctx context.Context) (Digest, error) {
	owners, err := s.tasks.ListOwners(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("list owners: %w", err)
	}

	d := Digest{GeneratedAt: s.now(), Owners: len(owners)}
	for _, owner := range owners {
		overdue, err := s.tasks.GetTasks(ctx, owner, repository.TaskQuery{Filter: model.FilterOverdue})
		if err != nil {
			return Digest{}, fmt.Errorf("count overdue: %w", err)
		}
		dueToday, err := s.tasks.GetTasks(ctx, owner, repository.TaskQuery{
			Filter:  model.FilterUpcoming,
			Horizon: model.HorizonDay,
		})
		if err != nil {
			return Digest{}, fmt.Errorf("count due today: %w", err)
		}
		d.Overdue += len(overdue)
		d.DueToday += len(dueToday)
	}
	return d, nil
}

// Run builds the digest, logs it and hands it to the notifier. Nothing is sent when no
// task is overdue or due within a day.
func (s *DigestService) Run(ctx context.Context) error {
	d, err := s.Build(ctx)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"owners":    d.Owners,
		"overdue":   d.Overdue,
		"due_today": d.DueToday,
	}).Info("digest built")

	if d.Overdue == 0 && d.DueToday == 0 {
		return nil
	}
	if err := s.notifier.Notify(ctx, FormatDigest(d)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// FormatDigest renders d as Telegram HTML.
func FormatDigest(d Digest) string {
	var b strings.Builder
	b.WriteString("📋 <b>Task digest</b>\n")
	b.WriteString(fmt.Sprintf("🗓 %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04 MST")))
	b.WriteString(fmt.Sprintf("⚠️ Overdue: <b>%d</b>\n", d.Overdue))
	b.WriteString(fmt.Sprintf("⏳ Due within a day: <b>%d</b>\n", d.DueToday))
	b.WriteString(fmt.Sprintf("👥 Users with tasks: %d", d.Owners))
	return b.String()
}
