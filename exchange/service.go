package exchange

import (
	"context"
	"fmt"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/domain"
	"time"
)

// Bank the rate holder a Service converts with. *bank.Bank satisfies it.
type Bank interface {
	ExchangeWith(ctx context.Context, money domain.Money, to domain.Currency, date string) (domain.Exchanged, error)
	Rate(ctx context.Context, from, to domain.Currency, date string) (decimal.Decimal, error)
	Rates() map[string]decimal.Decimal
	RefreshLatest(ctx context.Context, useCache bool) error
	RefreshHistorical(ctx context.Context, useCache bool) error
	ExportRates(format string) (string, error)
	RatesUpdatedAt() time.Time
	LastUpdated() time.Time
	RatesExpiration() time.Time
}

// Table the rate table at one instant along with its freshness
type Table struct {
	Base        domain.Currency
	AsOf        time.Time
	LastUpdated time.Time
	ExpiresAt   time.Time
	Rates       map[string]decimal.Decimal
}

// Service interface for converting money and managing the rates behind it
type Service interface {
	Convert(ctx context.Context, money domain.Money, to domain.Currency, date string) (domain.Exchanged, error)
	Rate(ctx context.Context, from, to domain.Currency, date string) (decimal.Decimal, error)
	Rates(ctx context.Context) (Table, error)
	Refresh(ctx context.Context, historical bool) error
	Export(ctx context.Context, format string) (string, error)
}

type service struct {
	bank Bank
}

// NewService constructs a valid Service
func NewService(b Bank) Service {
	return &service{
		bank: b,
	}
}

// Convert computes a conversion from one currency to another. An empty date uses the latest rates.
// As a side-effect expired rates might be refreshed.
func (s *service) Convert(ctx context.Context, money domain.Money, to domain.Currency, date string) (domain.Exchanged, error) {
	exchanged, err := s.bank.ExchangeWith(ctx, money, to, date)
	if err != nil {
		return domain.Exchanged{}, fmt.Errorf("convert from [%v]: %w", money.Currency, err)
	}
	return exchanged, nil
}

// Rate the rate from -> to, stored or derived through the base currency.
func (s *service) Rate(ctx context.Context, from, to domain.Currency, date string) (decimal.Decimal, error) {
	rate, err := s.bank.Rate(ctx, from, to, date)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rate [%v -> %v]: %w", from, to, err)
	}
	return rate, nil
}

func (s *service) Rates(_ context.Context) (Table, error) {
	return Table{
		Base:        domain.Base,
		AsOf:        s.bank.RatesUpdatedAt(),
		LastUpdated: s.bank.LastUpdated(),
		ExpiresAt:   s.bank.RatesExpiration(),
		Rates:       s.bank.Rates(),
	}, nil
}

// Refresh reloads the latest rates remotely, or the historical ones when historical is set.
func (s *service) Refresh(ctx context.Context, historical bool) error {
	if historical {
		return s.bank.RefreshHistorical(ctx, false)
	}
	return s.bank.RefreshLatest(ctx, false)
}

func (s *service) Export(_ context.Context, format string) (string, error) {
	return s.bank.ExportRates(format)
}
