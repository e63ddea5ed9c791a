package http

import (
	"encoding/json"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/domain"
	"go-ecb-exchange-bank/exchange"
	"io"
	"net/http"
	"time"
)

// Server dependencies for HTTP Server functions
type Server struct {
	Service exchange.Service
	router  chi.Router
	logger  log.Logger
}

// NewServer routes requests to s. Metrics are served from gatherer.
func NewServer(s exchange.Service, gatherer prometheus.Gatherer, logger log.Logger) *Server {
	server := &Server{
		Service: s,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	server.routes(gatherer)
	return server
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	s.router.Use(requestLogging(s.logger))

	s.router.Get("/health", s.health())
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.convert())
		r.Get("/rates", s.rates())
		r.Get("/rates/export", s.export())
		r.Post("/refresh", s.refresh())
	})
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients, amounts in minor units
	type request struct {
		FromCurrency domain.Currency
		ToCurrency   domain.Currency
		Amount       int64
		Date         string
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Rate     decimal.Decimal `json:"rate"`
		Amount   int64           `json:"amount"`
		Original int64           `json:"original"`
		Currency domain.Currency `json:"currency"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		bytes, err := io.ReadAll(r.Body)
		if err != nil {
			s.fail(rw, http.StatusBadRequest, "invalid request")
			return
		}

		var request request
		err = json.Unmarshal(bytes, &request)
		if err != nil {
			s.fail(rw, http.StatusBadRequest, "invalid json")
			return
		}

		money := domain.Money{Cents: request.Amount, Currency: request.FromCurrency}
		result, err := s.Service.Convert(r.Context(), money, request.ToCurrency, request.Date)
		if err != nil {
			s.failWith(rw, err)
			return
		}

		s.respond(rw, response{
			Rate:     result.Rate,
			Amount:   result.Amount.Cents,
			Original: request.Amount,
			Currency: result.Amount.Currency,
		})
	}
}

// rates produces HTTP handler for a single rate when from and to are given, else the whole table
func (s *Server) rates() http.HandlerFunc {

	type rateResponse struct {
		From domain.Currency `json:"from"`
		To   domain.Currency `json:"to"`
		Date string          `json:"date,omitempty"`
		Rate decimal.Decimal `json:"rate"`
	}

	type tableResponse struct {
		Base        domain.Currency            `json:"base"`
		AsOf        string                     `json:"asOf,omitempty"`
		LastUpdated *time.Time                 `json:"lastUpdated,omitempty"`
		ExpiresAt   *time.Time                 `json:"expiresAt,omitempty"`
		Rates       map[string]decimal.Decimal `json:"rates"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		from, to, date := domain.Currency(query.Get("from")), domain.Currency(query.Get("to")), query.Get("date")

		if from != "" || to != "" {
			rate, err := s.Service.Rate(r.Context(), from, to, date)
			if err != nil {
				s.failWith(rw, err)
				return
			}
			s.respond(rw, rateResponse{From: from.Normalize(), To: to.Normalize(), Date: date, Rate: rate})
			return
		}

		table, err := s.Service.Rates(r.Context())
		if err != nil {
			s.failWith(rw, err)
			return
		}
		response := tableResponse{Base: table.Base, Rates: table.Rates}
		if !table.AsOf.IsZero() {
			response.AsOf = table.AsOf.Format("2006-01-02")
		}
		if !table.LastUpdated.IsZero() {
			response.LastUpdated = &table.LastUpdated
		}
		if !table.ExpiresAt.IsZero() {
			response.ExpiresAt = &table.ExpiresAt
		}
		s.respond(rw, response)
	}
}

// export produces HTTP handler rendering the rate table as json or yaml
func (s *Server) export() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "json"
		}

		document, err := s.Service.Export(r.Context(), format)
		if err != nil {
			s.failWith(rw, err)
			return
		}

		if format == "yaml" {
			rw.Header().Set("Content-Type", "application/yaml")
		} else {
			rw.Header().Set("Content-Type", "application/json")
		}
		_, _ = rw.Write([]byte(document))
	}
}

// refresh produces HTTP handler forcing a remote refresh, ?historical=true for the historical feed
func (s *Server) refresh() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		historical := r.URL.Query().Get("historical") == "true"
		if err := s.Service.Refresh(r.Context(), historical); err != nil {
			s.failWith(rw, err)
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) health() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.respond(rw, map[string]string{"status": "ok"})
	}
}

func (s *Server) respond(rw http.ResponseWriter, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(rw)
	if err := enc.Encode(v); err != nil {
		level.Error(s.logger).Log("msg", "failed json encoding", "err", err)
	}
}

// failWith maps domain errors to status codes
func (s *Server) failWith(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCurrencyUnavailable), errors.Is(err, domain.ErrUnsupportedFormat), errors.Is(err, domain.ErrAmountOutOfRange):
		s.fail(rw, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateUnavailable):
		s.fail(rw, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDocumentParse):
		s.fail(rw, http.StatusBadGateway, err.Error())
	default:
		level.Error(s.logger).Log("msg", "request failed", "err", err)
		s.fail(rw, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) fail(rw http.ResponseWriter, status int, msg string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"error": msg})
}
