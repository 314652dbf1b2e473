package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrTooMany
	ErrInternal
	ErrBotNotFound
	ErrBotLimitReached
	ErrUnsupportedFormat
	ErrEmptyContent
	ErrSourceTooLarge
	ErrUploadFailed
	ErrAIUnavailable
	ErrCrawlFailed
)
