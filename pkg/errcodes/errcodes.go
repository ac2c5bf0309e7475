package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Telegram session and peer resolution.
	SessionNotAuthenticated failure.ErrorCode = "SessionNotAuthenticated"
	PeerNotFound            failure.ErrorCode = "PeerNotFound"
	PeerInvalid             failure.ErrorCode = "PeerInvalid"
	PeerPrivate             failure.ErrorCode = "PeerPrivate"

	// Primary marketplace.
	MarketplaceAuthRejected failure.ErrorCode = "MarketplaceAuthRejected"
	MarketplaceRateLimited  failure.ErrorCode = "MarketplaceRateLimited"
	MarketplaceUnavailable  failure.ErrorCode = "MarketplaceUnavailable"
	PoolDegraded            failure.ErrorCode = "PoolDegraded"

	// Caches and feeds.
	CacheReadFailed   failure.ErrorCode = "CacheReadFailed"
	CacheWriteFailed  failure.ErrorCode = "CacheWriteFailed"
	FeedUnavailable   failure.ErrorCode = "FeedUnavailable"
	CatalogInvalid    failure.ErrorCode = "CatalogInvalid"
	SnapshotNotStored failure.ErrorCode = "SnapshotNotStored"
)
