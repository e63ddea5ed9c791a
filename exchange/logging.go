package exchange

import (
	"context"
	"github.com/go-kit/log"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/domain"
	"time"
)

// loggingService decorates an exchange.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Convert(ctx context.Context, money domain.Money, to domain.Currency, date string) (ex domain.Exchanged, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert",
			"cents", money.Cents,
			"from", money.Currency,
			"to", to,
			"date", date,
			"rate", ex.Rate,
			"converted_cents", ex.Amount.Cents,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, money, to, date)
}

func (s *loggingService) Rate(ctx context.Context, from, to domain.Currency, date string) (rate decimal.Decimal, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "rate",
			"from", from,
			"to", to,
			"date", date,
			"rate", rate,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Rate(ctx, from, to, date)
}

func (s *loggingService) Rates(ctx context.Context) (table Table, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "rates",
			"count", len(table.Rates),
			"as_of", table.AsOf,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Rates(ctx)
}

func (s *loggingService) Refresh(ctx context.Context, historical bool) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "refresh",
			"historical", historical,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Refresh(ctx, historical)
}

func (s *loggingService) Export(ctx context.Context, format string) (document string, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "export",
			"format", format,
			"bytes", len(document),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Export(ctx, format)
}
