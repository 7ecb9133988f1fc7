package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenchat/canopy/pkg/observability"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

// Notifier delivers tenant events to the webhook URL in the tenant's resolved
// configuration. Tenants without a webhook_url are skipped. Delivery is
// asynchronous with exponential-backoff retries; a lost delivery is logged,
// never surfaced to the request that triggered it.
type Notifier struct {
	resolver *tenantconf.Resolver
	client   *http.Client
	policy   RetryPolicy
	secret   string
	logger   *observability.Logger

	wg sync.WaitGroup
}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithClient sets the HTTP client used for deliveries
func WithClient(client *http.Client) NotifierOption {
	return func(n *Notifier) { n.client = client }
}

// WithSigningSecret enables X-Canopy-Signature on every delivery
func WithSigningSecret(secret string) NotifierOption {
	return func(n *Notifier) { n.secret = secret }
}

// WithRetryPolicy overrides the delivery retry policy
func WithRetryPolicy(policy RetryPolicy) NotifierOption {
	return func(n *Notifier) { n.policy = policy }
}

// WithLogger sets the structured logger
func WithLogger(logger *observability.Logger) NotifierOption {
	return func(n *Notifier) { n.logger = logger }
}

// NewNotifier creates a Notifier that looks up webhook URLs through the
// given resolver.
func NewNotifier(resolver *tenantconf.Resolver, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		resolver: resolver,
		client:   &http.Client{Timeout: 10 * time.Second},
		policy:   DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = observability.NewLogger(observability.InfoLevel, os.Stdout)
	}
	return n
}

// Notify resolves the tenant's webhook URL and queues a delivery. The request
// context is only used for the resolution; the delivery itself runs on its
// own goroutine so it survives the originating request.
func (n *Notifier) Notify(ctx context.Context, slug string, eventType EventType, data map[string]interface{}) {
	cfg, err := n.resolver.Resolve(ctx, slug)
	if err != nil {
		n.logger.WithTenant(slug).WithError(err).Warn("webhook notify skipped, tenant did not resolve")
		return
	}
	url := cfg.Integrations.WebhookURL
	if url == "" {
		return
	}

	event := &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Tenant:    slug,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.WithTenant(slug).WithError(err).Error("webhook event marshal failed")
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliver(url, event, payload)
	}()
}

// Flush blocks until all queued deliveries have finished
func (n *Notifier) Flush() {
	n.wg.Wait()
}

// deliver posts the event, retrying per the policy. Runs until success,
// exhaustion, or a non-retryable failure building the request.
func (n *Notifier) deliver(url string, event *Event, payload []byte) {
	log := n.logger.WithTenant(event.Tenant).WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	})

	attempts := 0
	for {
		attempts++
		err := n.post(url, event, payload)
		if err == nil {
			log.WithField("attempts", attempts).Debug("webhook delivered")
			return
		}
		if !n.policy.ShouldRetry(attempts) {
			log.WithError(err).WithField("attempts", attempts).Warn("webhook delivery abandoned")
			return
		}
		time.Sleep(n.policy.Delay(attempts))
	}
}

// post performs a single delivery attempt
func (n *Notifier) post(url string, event *Event, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Canopy-Event", string(event.Type))
	req.Header.Set("X-Canopy-Event-ID", event.ID)
	req.Header.Set("X-Canopy-Delivery", time.Now().UTC().Format(time.RFC3339))
	if n.secret != "" {
		req.Header.Set("X-Canopy-Signature", Sign(payload, n.secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-2xx status: %d", resp.StatusCode)
	}
	return nil
}
