package domain

import (
	"errors"
	"github.com/shopspring/decimal"
	"strings"
)

// Currency an ISO 4217 currency code
type Currency string

// Base the currency every stored rate is expressed relative to
const Base Currency = "EUR"

// Normalize upper cases a currency code
func (c Currency) Normalize() Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(string(c))))
}

func (c Currency) String() string {
	return string(c)
}

// Money an amount in integer minor units (cents) of a currency
type Money struct {
	Cents    int64
	Currency Currency
}

// Exchanged the result of a conversion
type Exchanged struct {
	Rate   decimal.Decimal
	Amount Money
}

var (
	// ErrInvalidCache no cache slot is configured for a feed that is being persisted.
	ErrInvalidCache = errors.New("invalid cache")

	// ErrDocumentParse a rates document could not be parsed, from cache or remote.
	ErrDocumentParse = errors.New("malformed rates document")

	// ErrRateUnavailable neither a direct nor a derived rate exists for a pair.
	ErrRateUnavailable = errors.New("rate unavailable")

	// ErrCurrencyUnavailable the currency is not one the ECB publishes.
	ErrCurrencyUnavailable = errors.New("currency unavailable")

	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrAmountOutOfRange a converted amount does not fit in int64 minor units.
	ErrAmountOutOfRange = errors.New("amount out of range")
)
