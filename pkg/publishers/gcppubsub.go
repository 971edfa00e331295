package publishers

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type gcpPubSubSender struct {
	topic *pubsub.Topic
}

func newGCPPubSubSender(ctx context.Context, cfg *GCPQueueConfig) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gcp pubsub configuration is missing")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &gcpPubSubSender{topic: client.Topic(cfg.Topic)}, nil
}

// Send blocks until Pub/Sub acknowledges the message.
func (s *gcpPubSubSender) Send(ctx context.Context, payload []byte, attrs map[string]string) (string, error) {
	res := s.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: attrs,
	})
	msgID, err := res.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("send message to pubsub: %w", err)
	}
	return msgID, nil
}
