package publishers

import (
	"context"
	"encoding/json"
	"fmt"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, payload []byte, attrs map[string]string) (string, error)
}

// queuePublisher dispatches events to a cloud queue provider.
type queuePublisher struct {
	id       string
	typ      string
	provider string
	sender   queueSender
	log      Logger
}

func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)
	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.AWS)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queuePublisher{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func (p *queuePublisher) ID() string   { return p.id }
func (p *queuePublisher) Type() string { return p.typ }

// Publish encodes the event and forwards it to the queue provider.
func (p *queuePublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msgID, err := p.sender.Send(ctx, payload, evt.attributes())
	if err != nil {
		p.log.ErrorObj("queue publisher send failed", "publisher_queue_error", map[string]any{
			"publisher_id": p.id,
			"provider":     p.provider,
			"error":        err.Error(),
		})
		return fmt.Errorf("queue provider %s send failed: %w", p.provider, err)
	}

	p.log.DebugObj("queue publisher delivered event", "publisher_queue_delivery", map[string]any{
		"publisher_id": p.id,
		"provider":     p.provider,
		"message_id":   msgID,
	})
	return nil
}
