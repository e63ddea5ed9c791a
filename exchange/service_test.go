package exchange

import (
	"context"
	"errors"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-ecb-exchange-bank/bank"
	"go-ecb-exchange-bank/currency"
	"go-ecb-exchange-bank/domain"
	"strings"
	"testing"
)

const dailyDocument = `<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<Cube>
		<Cube time='2024-01-05'>
			<Cube currency='USD' rate='2.0'/>
			<Cube currency='GBP' rate='0.5'/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

type mock struct {
	document string
	calls    map[string]int
}

func (m *mock) Fetch(_ context.Context, url string) (string, error) {
	m.calls[url]++
	return m.document, nil
}

func newBank(t *testing.T) (*bank.Bank, *mock) {
	m := &mock{document: dailyDocument, calls: map[string]int{}}
	b := bank.New(m, bank.WithURLs("latest", "historical"))
	require.NoError(t, b.RefreshFromString(dailyDocument))
	return b, m
}

func TestService_Convert(t *testing.T) {
	b, _ := newBank(t)
	service := NewService(b)

	type args struct {
		money domain.Money
		to    domain.Currency
	}
	tests := []struct {
		name     string
		args     args
		want     domain.Money
		wantRate string
		wantErr  error
	}{
		{
			"eur -> usd",
			args{domain.Money{Cents: 1000, Currency: "EUR"}, "USD"},
			domain.Money{Cents: 2000, Currency: "USD"},
			"2",
			nil,
		},
		{
			"usd -> gbp",
			args{domain.Money{Cents: 1000, Currency: "USD"}, "GBP"},
			domain.Money{Cents: 250, Currency: "GBP"},
			"0.25",
			nil,
		},
		{
			"gbp -> eur",
			args{domain.Money{Cents: 1000, Currency: "gbp"}, "eur"},
			domain.Money{Cents: 2000, Currency: "EUR"},
			"2",
			nil,
		},
		{
			"eur -> jpy",
			args{domain.Money{Cents: 1000, Currency: "EUR"}, "JPY"},
			domain.Money{},
			"",
			domain.ErrRateUnavailable,
		},
		{
			"abc -> xyz",
			args{domain.Money{Cents: 1000, Currency: "ABC"}, "XYZ"},
			domain.Money{},
			"",
			domain.ErrCurrencyUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.Convert(context.Background(), tt.args.money, tt.args.to, "")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Amount)
			assert.Equal(t, tt.wantRate, got.Rate.String())
		})
	}
}

func TestService_Rate(t *testing.T) {
	b, _ := newBank(t)
	service := NewService(b)

	rate, err := service.Rate(context.Background(), "USD", "GBP", "")
	require.NoError(t, err)
	assert.Equal(t, "0.25", rate.String())

	_, err = service.Rate(context.Background(), "USD", "GBP", "2024-01-05")
	assert.True(t, errors.Is(err, domain.ErrRateUnavailable))
}

func TestService_Rates(t *testing.T) {
	b, _ := newBank(t)

	table, err := NewService(b).Rates(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Base, table.Base)
	assert.Equal(t, "2024-01-05", table.AsOf.Format("2006-01-02"))
	assert.Len(t, table.Rates, 3)
	assert.True(t, table.ExpiresAt.IsZero())
}

func TestService_Refresh(t *testing.T) {
	b, m := newBank(t)
	service := NewService(b)

	require.NoError(t, service.Refresh(context.Background(), false))
	assert.Equal(t, 1, m.calls["latest"])
	assert.Equal(t, 0, m.calls["historical"])

	require.NoError(t, service.Refresh(context.Background(), true))
	assert.Equal(t, 1, m.calls["historical"])
}

func TestDecorators(t *testing.T) {
	b, _ := newBank(t)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	var buf strings.Builder
	service := NewLoggingService(log.NewLogfmtLogger(&buf), NewInstrumentingService(metrics, currency.ECB(), NewService(b)))

	_, err := service.Convert(context.Background(), domain.Money{Cents: 100, Currency: "eur"}, "usd", "")
	require.NoError(t, err)
	_, err = service.Export(context.Background(), "xml")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))

	assert.Contains(t, buf.String(), "method=convert")
	assert.Contains(t, buf.String(), "converted_cents=200")
	assert.Contains(t, buf.String(), "method=export")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("EUR", "USD", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExportsTotal.WithLabelValues("other", "error")))
}

func TestInstrumentingService_BoundedLabels(t *testing.T) {
	b, _ := newBank(t)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	service := NewInstrumentingService(metrics, currency.ECB(), NewService(b))
	ctx := context.Background()

	for _, code := range []domain.Currency{"AAA", "BBB", "zzz"} {
		_, err := service.Convert(ctx, domain.Money{Cents: 100, Currency: code}, "usd", "")
		assert.True(t, errors.Is(err, domain.ErrCurrencyUnavailable))
	}
	for _, format := range []string{"csv", "toml", "JSON"} {
		_, _ = service.Export(ctx, format)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ConversionsTotal.WithLabelValues("unknown", "USD", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.ConversionsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ExportsTotal.WithLabelValues("other", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExportsTotal.WithLabelValues("json", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.ExportsTotal))
}
