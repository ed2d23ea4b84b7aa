// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Inbound API buckets and outbound provider budgets.
  - Keys: Redis prefixes and HTTP header names.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "shelfsync"
	AppVersion = "0.2.0-dev"

	// UserAgent identifies shelfsync to the providers it calls.
	UserAgent = AppName + "/" + AppVersion
)

// # Server Timing

const (
	DefaultReadTimeout       = 5 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	// DefaultWriteTimeout must outlive GlobalRequestTimeout, a reconciliation
	// may wait on several providers in turn.
	DefaultWriteTimeout = 95 * time.Second

	// GlobalRequestTimeout is the caller-side deadline wrapped around a whole
	// reconciliation. The core itself never cancels a provider sequence.
	GlobalRequestTimeout = 90 * time.Second

	ShutdownTimeout = 30 * time.Second

	// StatementTimeout bounds every SQL statement.
	StatementTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	DefaultRateLimitRPS      = 20.0
	DefaultRateLimitBurst    = 40
	RateLimitCleanupInterval = 1 * time.Minute
	RateLimitClientTTL       = 3 * time.Minute

	// ProviderRPS keeps each provider well below its published limits
	// (MangaDex allows 5 req/s per IP).
	ProviderRPS   = 2.0
	ProviderBurst = 2
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldError  = "error"
	FieldCode   = "code"
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixTitleLanguage = "langdetect:title:"
	RedisPrefixJobLock       = "job:lock:"
)
