// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/tgbot/internal/cron"
	"github.com/flemzord/tgbot/pkg/telegram"
)

// MockJob is a cron.Job that records when it ran and returns Err.
type MockJob struct {
	JobName string
	Expr    string
	Err     error

	mu   sync.Mutex
	runs []time.Time
}

var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.JobName }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.Expr }

// Run implements cron.Job.
func (m *MockJob) Run(context.Context) error {
	m.mu.Lock()
	m.runs = append(m.runs, time.Now())
	m.mu.Unlock()
	return m.Err
}

// Runs returns the start time of every run so far.
func (m *MockJob) Runs() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.runs...)
}

// MockSender is a test double for cron.MessageSender that records every
// request.
type MockSender struct {
	Err error

	mu   sync.Mutex
	sent []telegram.SendMessageRequest
}

var _ cron.MessageSender = (*MockSender)(nil)

// SendMessage implements cron.MessageSender.
func (m *MockSender) SendMessage(_ context.Context, req telegram.SendMessageRequest) (*telegram.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.sent = append(m.sent, req)
	return &telegram.Message{MessageID: int64(len(m.sent))}, nil
}

// Sent returns a copy of the recorded requests.
func (m *MockSender) Sent() []telegram.SendMessageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]telegram.SendMessageRequest(nil), m.sent...)
}
