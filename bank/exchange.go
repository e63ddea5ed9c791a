package bank

import (
	"context"
	"fmt"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/domain"
	"go-ecb-exchange-bank/rates"
	"math"
)

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// Rate resolves the rate from -> to, stored directly or derived through EUR.
// It fails with domain.ErrRateUnavailable when neither exists.
func (b *Bank) Rate(ctx context.Context, from, to domain.Currency, date string) (decimal.Decimal, error) {
	rate, ok, err := b.GetRate(ctx, from, to, date)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if ok {
		return rate, nil
	}
	return b.derivedRate(from.Normalize(), to.Normalize(), date)
}

// derivedRate computes EUR_TO_to / EUR_TO_from from one view of the table,
// so a concurrent refresh is never seen half applied.
func (b *Bank) derivedRate(from, to domain.Currency, date string) (decimal.Decimal, error) {
	var fromRate, toRate decimal.Decimal
	var fromOK, toOK bool
	b.rates.View(func(r rates.Reader) {
		fromRate, fromOK = r.Get(rates.Key{From: domain.Base, To: from, Date: date})
		toRate, toOK = r.Get(rates.Key{From: domain.Base, To: to, Date: date})
	})

	if !fromOK || !toOK || fromRate.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: %v to %v %v", domain.ErrRateUnavailable, from, to, date)
	}
	return toRate.Div(fromRate), nil
}

// Exchange converts cents of from into minor units of to, rounding half away from zero.
// An empty date uses the latest rates.
func (b *Bank) Exchange(ctx context.Context, cents int64, from, to domain.Currency, date string) (int64, error) {
	exchanged, err := b.ExchangeWith(ctx, domain.Money{Cents: cents, Currency: from}, to, date)
	if err != nil {
		return 0, err
	}
	return exchanged.Amount.Cents, nil
}

// ExchangeWith converts money into currency to, returning the rate that was applied.
func (b *Bank) ExchangeWith(ctx context.Context, money domain.Money, to domain.Currency, date string) (domain.Exchanged, error) {
	from, to := money.Currency.Normalize(), to.Normalize()

	rate, err := b.Rate(ctx, from, to, date)
	if err != nil {
		return domain.Exchanged{}, fmt.Errorf("exchange [%v -> %v]: %w", from, to, err)
	}

	fromUnit, err := b.currencies.SubunitToUnit(from)
	if err != nil {
		return domain.Exchanged{}, err
	}
	toUnit, err := b.currencies.SubunitToUnit(to)
	if err != nil {
		return domain.Exchanged{}, err
	}

	cents := decimal.NewFromInt(money.Cents).
		Mul(rate).
		Mul(decimal.NewFromInt(toUnit)).
		Div(decimal.NewFromInt(fromUnit)).
		Round(0)
	if cents.LessThan(minCents) || cents.GreaterThan(maxCents) {
		return domain.Exchanged{}, fmt.Errorf("exchange [%v %v -> %v]: %w", money.Cents, from, to, domain.ErrAmountOutOfRange)
	}

	return domain.Exchanged{
		Rate:   rate,
		Amount: domain.Money{Cents: cents.IntPart(), Currency: to},
	}, nil
}
