package rates

import (
	"fmt"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/domain"
	"strings"
	"sync"
)

// Key identifies a rate: one unit of From buys Rate units of To, optionally on a Date.
type Key struct {
	From domain.Currency
	To   domain.Currency
	// Date is the literal date string of the source document, empty for the latest rate.
	Date string
}

// String the canonical form, e.g. EUR_TO_USD or EUR_TO_USD_2024-01-02
func (k Key) String() string {
	if k.Date == "" {
		return strings.ToUpper(fmt.Sprintf("%v_TO_%v", k.From, k.To))
	}
	return strings.ToUpper(fmt.Sprintf("%v_TO_%v_%v", k.From, k.To, k.Date))
}

// Entry a single rate to be applied in a batch
type Entry struct {
	Key  Key
	Rate decimal.Decimal
}

// Reader is the read half of a Tx.
type Reader interface {
	Get(key Key) (decimal.Decimal, bool)
}

// Tx gives lock-free access to the table. A Tx is only valid inside the
// View or Update callback that handed it out, where the store lock is held.
type Tx struct {
	rates map[string]decimal.Decimal
}

func (tx *Tx) Get(key Key) (decimal.Decimal, bool) {
	rate, ok := tx.rates[key.String()]
	return rate, ok
}

func (tx *Tx) Set(key Key, rate decimal.Decimal) {
	tx.rates[key.String()] = rate
}

// Store the keyed rate table. The store is concurrency safe; one lock guards every key.
type Store struct {
	// lock synchronizes access to rates
	lock sync.RWMutex

	// rates maps canonical key strings to rates
	rates map[string]decimal.Decimal
}

// NewStore returns an empty Store
func NewStore() *Store {
	return &Store{
		rates: map[string]decimal.Decimal{},
	}
}

// Get looks up a single rate.
func (s *Store) Get(key Key) (decimal.Decimal, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	rate, ok := s.rates[key.String()]
	return rate, ok
}

// Set inserts or overwrites a single rate.
func (s *Store) Set(key Key, rate decimal.Decimal) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.rates[key.String()] = rate
}

// ApplyBatch sets every entry and then every identity key to 1 within one lock acquisition.
// Keys missing from entries keep whatever value they already had.
func (s *Store) ApplyBatch(entries []Entry, identities []Key) {
	s.Update(func(tx *Tx) {
		for _, e := range entries {
			tx.Set(e.Key, e.Rate)
		}
		for _, k := range identities {
			tx.Set(k, decimal.NewFromInt(1))
		}
	})
}

// View runs fn with the read lock held. fn must not retain r.
func (s *Store) View(fn func(r Reader)) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	fn(&Tx{rates: s.rates})
}

// Update runs fn with the write lock held. fn must not retain tx or block.
func (s *Store) Update(fn func(tx *Tx)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	fn(&Tx{rates: s.rates})
}

// Snapshot copies the whole table under one lock acquisition.
func (s *Store) Snapshot() map[string]decimal.Decimal {
	s.lock.RLock()
	defer s.lock.RUnlock()
	snapshot := make(map[string]decimal.Decimal, len(s.rates))
	for k, v := range s.rates {
		snapshot[k] = v
	}
	return snapshot
}
