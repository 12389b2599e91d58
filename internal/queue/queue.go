package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/unclebandit/smsleopard-activation/internal/logger"
	"github.com/unclebandit/smsleopard-activation/internal/model"
	"github.com/unclebandit/smsleopard-activation/internal/repository"
)

// TopicEventActivations carries model.ActivationCommitted messages.
const TopicEventActivations = "event_activations"

const defaultMaxRetries = 3

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue dispatches to subscribers in-process, retrying failed
// handlers with a linear backoff.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	wg         sync.WaitGroup
	MaxRetries int
	Backoff    time.Duration
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: defaultMaxRetries,
		Backoff:    500 * time.Millisecond,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Topic: topic, Payload: payload, MaxRetries: q.MaxRetries}
		q.wg.Add(1)
		go q.processJob(handler, job)
	}
	return nil
}

func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	defer q.wg.Done()
	log := logger.Log.WithField("topic", job.Topic)

	for {
		err := handler(job.Payload)
		if err == nil {
			log.Debug("✅ Job processed successfully")
			return
		}

		job.RetryCount++
		if job.RetryCount > job.MaxRetries {
			log.WithError(err).Errorf("❌ Job permanently failed after %d attempts", job.RetryCount)
			return
		}
		log.WithError(err).Warnf("⚠️ Job failed (attempt %d/%d)", job.RetryCount, job.MaxRetries)
		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every dispatched job has finished.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

// DecodeCommitted accepts either an in-process struct or a JSON body from
// the broker.
func DecodeCommitted(payload any) (model.ActivationCommitted, error) {
	switch v := payload.(type) {
	case model.ActivationCommitted:
		return v, nil
	case *model.ActivationCommitted:
		if v == nil {
			return model.ActivationCommitted{}, fmt.Errorf("nil activation payload")
		}
		return *v, nil
	case []byte:
		var msg model.ActivationCommitted
		if err := json.Unmarshal(v, &msg); err != nil {
			return model.ActivationCommitted{}, fmt.Errorf("decode activation payload: %w", err)
		}
		return msg, nil
	default:
		return model.ActivationCommitted{}, fmt.Errorf("unexpected activation payload %T", payload)
	}
}

// StartActivationLogSubscriber records every committed activation in the
// audit log. Undecodable payloads are dropped rather than retried.
func StartActivationLogSubscriber(q Queue, logRepo repository.ActivationLogRepositoryInterface) error {
	return q.Subscribe(TopicEventActivations, func(payload any) error {
		msg, err := DecodeCommitted(payload)
		if err != nil {
			logger.Log.WithError(err).Warn("⚠️ Dropping invalid activation message")
			return nil
		}

		log := logger.WithTenant(msg.TenantID).WithField("request_id", msg.RequestID)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := logRepo.Create(ctx, model.NewActivationRecord(msg)); err != nil {
			log.WithError(err).Warn("⚠️ Failed to write activation log")
			return err
		}
		log.Infof("📩 Activation recorded for %d events", len(msg.EventIDs))
		return nil
	})
}
