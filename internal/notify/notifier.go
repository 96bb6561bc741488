// Package notify alerts operators when health checks fail. It is a narrow
// collaborator: the core jobs never call it, only peripheral checks do.
package notify

import (
	"context"
	"time"

	"github.com/baulytics/baupreis/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, message string) error {
	return nil
}

type slackNotifier struct {
	client     *resty.Client
	webhookURL string
	log        *zap.Logger
}

// New returns a Slack webhook notifier, or a no-op when no webhook is
// configured.
func New(cfg config.Config, log *zap.Logger) Notifier {
	if cfg.SlackWebhookURL == "" {
		return noopNotifier{}
	}
	return &slackNotifier{
		client:     resty.New().SetTimeout(5 * time.Second),
		webhookURL: cfg.SlackWebhookURL,
		log:        log.Named("notify.slack"),
	}
}

func (n *slackNotifier) Notify(ctx context.Context, message string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"text": message}).
		Post(n.webhookURL)
	if err != nil {
		n.log.Warn("slack notification failed", zap.Error(err))
		return err
	}
	if resp.IsError() {
		n.log.Warn("slack notification rejected", zap.Int("status", resp.StatusCode()))
	}
	return nil
}

var Module = fx.Module("notify",
	fx.Provide(New),
)
