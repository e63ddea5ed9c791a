package currency

import (
	"fmt"
	"go-ecb-exchange-bank/domain"
)

// Registry knows the currencies the bank can exchange and how many minor units make a major unit.
type Registry struct {
	subunits map[domain.Currency]int64
}

// ecbSubunits the currencies published in the ECB reference feeds, plus the base currency.
var ecbSubunits = map[domain.Currency]int64{
	"EUR": 100,
	"USD": 100,
	"JPY": 1,
	"BGN": 100,
	"CZK": 100,
	"DKK": 100,
	"GBP": 100,
	"HUF": 100,
	"ILS": 100,
	"ISK": 1,
	"PLN": 100,
	"RON": 100,
	"SEK": 100,
	"CHF": 100,
	"NOK": 100,
	"HRK": 100,
	"RUB": 100,
	"TRY": 100,
	"AUD": 100,
	"BRL": 100,
	"CAD": 100,
	"CNY": 100,
	"HKD": 100,
	"IDR": 100,
	"INR": 100,
	"KRW": 1,
	"MXN": 100,
	"MYR": 100,
	"NZD": 100,
	"PHP": 100,
	"SGD": 100,
	"THB": 100,
	"ZAR": 100,
}

// ECB returns a Registry of the ECB-published currencies
func ECB() *Registry {
	return New(ecbSubunits)
}

// New builds a Registry from a map of currency code to minor units per major unit.
func New(subunits map[domain.Currency]int64) *Registry {
	r := &Registry{subunits: make(map[domain.Currency]int64, len(subunits))}
	for c, n := range subunits {
		r.subunits[c.Normalize()] = n
	}
	return r
}

// Available reports whether currency can be exchanged
func (r *Registry) Available(currency domain.Currency) bool {
	_, ok := r.subunits[currency.Normalize()]
	return ok
}

// Check returns domain.ErrCurrencyUnavailable for currencies outside the registry.
func (r *Registry) Check(currencies ...domain.Currency) error {
	for _, c := range currencies {
		if !r.Available(c) {
			return fmt.Errorf("%w: %v", domain.ErrCurrencyUnavailable, c)
		}
	}
	return nil
}

// SubunitToUnit the number of minor units in one major unit of currency.
func (r *Registry) SubunitToUnit(currency domain.Currency) (int64, error) {
	n, ok := r.subunits[currency.Normalize()]
	if !ok {
		return 0, fmt.Errorf("%w: %v", domain.ErrCurrencyUnavailable, currency)
	}
	return n, nil
}

// Codes lists the registered currency codes in no particular order.
func (r *Registry) Codes() []domain.Currency {
	codes := make([]domain.Currency, 0, len(r.subunits))
	for c := range r.subunits {
		codes = append(codes, c)
	}
	return codes
}
