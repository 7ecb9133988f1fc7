// Package tenantconf resolves per-tenant configuration documents into fully
// populated, typed configuration values, and owns the in-process cache those
// resolutions live in.
//
// # Overview
//
// Tenant configuration is stored as a TOML-like text document: # comments,
// [section] headers, key = value lines. Administrators edit the document as
// free text; the stored document fully replaces the previous one on update.
//
// Resolution composes three pure pieces:
//
//   - ParseLenient: best-effort text -> Document; never fails, silently
//     skips lines it cannot interpret.
//   - StrictDefaults / TemplateDefaults: the two named default profiles.
//   - MergeOverDefaults: applies only the keys explicitly present in a
//     Document over a complete default Config.
//
// The Resolver orchestrates them behind a TTL LRU cache keyed by tenant slug,
// with explicit invalidation (and optional cross-instance invalidation via a
// redis pub/sub bus). A resolved Config is always fully populated: every
// recognized key carries either the tenant's override or the default.
//
// ValidateDocument is the strict pre-flight counterpart of ParseLenient:
// where the parser skips, the validator reports a line-numbered Issue, so an
// administrator saving a bad document gets an itemized list instead of silent
// fallbacks.
//
// # Usage Example
//
//	resolver := tenantconf.NewResolver(store,
//		tenantconf.WithCacheTTL(5*time.Minute),
//		tenantconf.WithLogger(logger),
//	)
//	cfg, err := resolver.Resolve(ctx, "acme")
//	if tenant.IsNotFound(err) {
//		// unknown tenant -> 404
//	}
//
// After any write to the stored document:
//
//	store.UpdateConfigText(ctx, id, text)
//	resolver.Invalidate("acme")
//
// # Related Packages
//
//   - pkg/tenant: the Store the resolver reads from
//   - pkg/permissions: consumes resolved Configs
package tenantconf
