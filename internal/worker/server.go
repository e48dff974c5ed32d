package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"settlement-service/internal/consumers"

	"github.com/hibiken/asynq"
)

type Worker struct {
	Processor *consumers.NotificationProcessor
}

func NewWorker(processor *consumers.NotificationProcessor) *Worker {
	return &Worker{Processor: processor}
}

func (w *Worker) HandlePaymentSubmitted(ctx context.Context, t *asynq.Task) error {
	var p consumers.PaymentNoticeDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessPaymentSubmitted(p)
	return nil
}

func (w *Worker) HandlePaymentApproved(ctx context.Context, t *asynq.Task) error {
	var p consumers.PaymentNoticeDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessPaymentApproved(p)
	return nil
}

func (w *Worker) HandlePaymentRejected(ctx context.Context, t *asynq.Task) error {
	var p consumers.PaymentNoticeDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessPaymentRejected(p)
	return nil
}

func (w *Worker) HandleBonusAwarded(ctx context.Context, t *asynq.Task) error {
	var p consumers.BonusNoticeDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessBonusAwarded(p)
	return nil
}

func (w *Worker) HandleInterestCredited(ctx context.Context, t *asynq.Task) error {
	var p consumers.InterestNoticeDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessInterestCredited(p)
	return nil
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.NotificationProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()

	mux.HandleFunc(TypePaymentSubmitted, worker.HandlePaymentSubmitted)
	mux.HandleFunc(TypePaymentApproved, worker.HandlePaymentApproved)
	mux.HandleFunc(TypePaymentRejected, worker.HandlePaymentRejected)
	mux.HandleFunc(TypeBonusAwarded, worker.HandleBonusAwarded)
	mux.HandleFunc(TypeInterestCredited, worker.HandleInterestCredited)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run worker server: %v", err)
	}
}
