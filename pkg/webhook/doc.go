// Package webhook notifies tenants about changes to their own records.
//
// # Overview
//
// Each tenant opts in by setting webhook_url in the [integrations] section of
// its configuration document. When a configuration document changes, a
// customer is deleted, or single sign-on provisions a new user, the Notifier
// posts a JSON Event to that URL. Deliveries run asynchronously with
// exponential-backoff retries and, when a signing secret is configured, carry
// an HMAC-SHA256 signature in X-Canopy-Signature that receivers can check
// with VerifySignature.
//
// # Usage Example
//
//	notifier := webhook.NewNotifier(resolver,
//		webhook.WithSigningSecret(secret),
//		webhook.WithLogger(logger),
//	)
//	defer notifier.Flush()
//
//	notifier.Notify(ctx, "acme", webhook.EventConfigUpdated, map[string]interface{}{
//		"updated_by": "api",
//	})
//
// # Related Packages
//
//   - pkg/tenantconf: source of the per-tenant webhook_url
//   - pkg/api: emits config.updated and customer.deleted
//   - pkg/sso: emits user.provisioned
package webhook
