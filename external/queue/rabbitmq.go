// Package queue adapts RabbitMQ for the asynchronous grading pipeline.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dryrunhq/dryrun/internal/queue"
)

const gradingQueueName = "grading_jobs"

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		gradingQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", gradingQueueName, err)
	}
	return &RabbitMQ{conn: conn, channel: ch, queue: q}, nil
}

func (r *RabbitMQ) PublishGradingJob(ctx context.Context, job queue.GradingJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal grading job: %w", err)
	}
	err = r.channel.PublishWithContext(ctx,
		"",           // exchange
		r.queue.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish grading job: %w", err)
	}
	slog.Info("grading job published", "job_id", job.JobID, "session_id", job.SessionID)
	return nil
}

// ConsumeGradingJobs delivers jobs to the handler until the context is
// cancelled. Deliveries are acked only after the handler returns, so a
// crashed worker redelivers the job.
func (r *RabbitMQ) ConsumeGradingJobs(ctx context.Context, handle func(queue.GradingJob)) error {
	msgs, err := r.channel.Consume(
		r.queue.Name,
		"",
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("grading job channel closed")
			}
			var job queue.GradingJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				slog.Error("invalid grading job payload; discarding", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			handle(job)
			if err := d.Ack(false); err != nil {
				slog.Error("grading job ack failed", "error", err, "job_id", job.JobID)
			}
		}
	}
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		_ = r.conn.Close()
		return err
	}
	return r.conn.Close()
}
