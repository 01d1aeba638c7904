package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/bankdesk/bankdesk/internal/banks"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBankPurge removes banks whose deletion request has been approved.
	TaskBankPurge = "bank:purge_approved"
)

// BankPurgePayload carries the purge task parameters. Empty today; kept as a
// payload struct so retention windows can be added without a task rename.
type BankPurgePayload struct {
	RequestedBy string `json:"requestedBy,omitempty"`
}

// NewBankPurgeTask constructs an Asynq task.
func NewBankPurgeTask(payload BankPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBankPurge, data), nil
}

// BankPurgeJob deletes rows whose deletion request was approved.
type BankPurgeJob struct {
	service *banks.Service
	logger  *slog.Logger
}

// NewBankPurgeJob constructs a BankPurgeJob.
func NewBankPurgeJob(service *banks.Service, logger *slog.Logger) *BankPurgeJob {
	return &BankPurgeJob{service: service, logger: logger}
}

// Handle processes TaskBankPurge tasks.
func (j *BankPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload BankPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	purged, err := j.service.PurgeApproved(ctx)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("purge approved banks", slog.Any("error", err))
		}
		return err
	}
	if j.logger != nil {
		j.logger.Info("purged approved banks", slog.Int64("count", purged))
	}
	return nil
}
