package cron

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/flemzord/tgbot/internal/security"
	"github.com/flemzord/tgbot/pkg/telegram"
)

// MessageSender is the subset of telegram.Client needed by announcements.
type MessageSender interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
}

// AnnouncementJob posts a fixed text to one chat on a schedule.
type AnnouncementJob struct {
	Sender       MessageSender
	JobName      string
	ScheduleExpr string
	ChatID       int64
	Text         string
	Logger       *slog.Logger

	// Limiter, when set, is consulted before sending so announcements
	// share the reply budget of their chat.
	Limiter *security.RateLimiter
}

// Compile-time interface check.
var _ Job = (*AnnouncementJob)(nil)

// Name implements Job.
func (j *AnnouncementJob) Name() string { return "announce:" + j.JobName }

// Schedule implements Job.
func (j *AnnouncementJob) Schedule() string { return j.ScheduleExpr }

// Run sends the announcement.
func (j *AnnouncementJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: announcement %s cancelled: %w", j.JobName, ctx.Err())
	}
	if j.Limiter != nil {
		if err := j.Limiter.Allow(strconv.FormatInt(j.ChatID, 10)); err != nil {
			return fmt.Errorf("cron: announcement %s: %w", j.JobName, err)
		}
	}

	msg, err := j.Sender.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: j.ChatID,
		Text:   j.Text,
	})
	if err != nil {
		return fmt.Errorf("cron: announcement %s: %w", j.JobName, err)
	}
	if j.Logger != nil {
		j.Logger.Info("announcement sent", "job", j.JobName, "chat_id", j.ChatID, "message_id", msg.MessageID)
	}
	return nil
}

// Pruner is the subset of security.RateLimiter needed by LimiterPruneJob.
type Pruner interface {
	Prune()
	Len() int
}

// LimiterPruneJob drops idle rate-limit buckets.
type LimiterPruneJob struct {
	Limiter Pruner
	Logger  *slog.Logger

	// Label tells several prune jobs apart: "limiter_prune:<label>".
	Label        string
	ScheduleExpr string // empty = default "*/5 * * * *"
}

// Compile-time interface check.
var _ Job = (*LimiterPruneJob)(nil)

// Name implements Job.
func (j *LimiterPruneJob) Name() string {
	if j.Label != "" {
		return "limiter_prune:" + j.Label
	}
	return "limiter_prune"
}

// Schedule implements Job.
func (j *LimiterPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run prunes idle buckets.
func (j *LimiterPruneJob) Run(_ context.Context) error {
	before := j.Limiter.Len()
	j.Limiter.Prune()
	if pruned := before - j.Limiter.Len(); pruned > 0 && j.Logger != nil {
		j.Logger.Debug("pruned idle rate-limit buckets", "job", j.Name(), "count", pruned)
	}
	return nil
}
