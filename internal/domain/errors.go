package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrMissingSource       = errors.New("source not found")
	ErrNoData              = errors.New("no data parsed")
	ErrRowCountMismatch    = errors.New("row count mismatch")
	ErrColumnNotFound      = errors.New("column not found")
	ErrOriginExhausted     = errors.New("original input exhausted before response blocks")
	ErrOriginUnconsumed    = errors.New("original input has rows without response blocks")
	ErrInvalidParseMode    = errors.New("invalid parse mode")
	ErrEmptyDocument       = errors.New("document is empty")
	ErrUnsupportedScheme   = errors.New("unsupported storage scheme")
	ErrPersistenceDisabled = errors.New("run persistence is disabled")
)
