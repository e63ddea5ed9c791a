package bank

import (
	"encoding/json"
	"fmt"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/domain"
	"go-ecb-exchange-bank/rates"
	"gopkg.in/yaml.v3"
	"strings"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExportRates renders one snapshot of the table as a map of canonical key to decimal string.
func (b *Bank) ExportRates(format string) (string, error) {
	snapshot := b.rates.Snapshot()
	out := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		out[k] = v.String()
	}

	var bytes []byte
	var err error
	switch strings.ToLower(format) {
	case FormatJSON:
		bytes, err = json.Marshal(out)
	case FormatYAML:
		bytes, err = yaml.Marshal(out)
	default:
		return "", fmt.Errorf("export rates [%v]: %w", format, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return "", fmt.Errorf("export rates [%v]: %w", format, err)
	}
	return string(bytes), nil
}

// ImportRates applies rates produced by ExportRates in a single batch.
func (b *Bank) ImportRates(format, document string) error {
	in := map[string]string{}
	var err error
	switch strings.ToLower(format) {
	case FormatJSON:
		err = json.Unmarshal([]byte(document), &in)
	case FormatYAML:
		err = yaml.Unmarshal([]byte(document), &in)
	default:
		return fmt.Errorf("import rates [%v]: %w", format, domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("import rates [%v]: %w: %v", format, domain.ErrDocumentParse, err)
	}

	entries := make([]rates.Entry, 0, len(in))
	for k, v := range in {
		key, err := parseKey(k)
		if err != nil {
			return fmt.Errorf("import rates [%v]: %w", format, err)
		}
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("import rates [%v]: %w: rate of %v: %v", format, domain.ErrDocumentParse, k, err)
		}
		entries = append(entries, rates.Entry{Key: key, Rate: rate})
	}
	b.rates.ApplyBatch(entries, nil)
	return nil
}

// parseKey reverses rates.Key.String
func parseKey(s string) (rates.Key, error) {
	from, rest, ok := strings.Cut(strings.ToUpper(s), "_TO_")
	if !ok || from == "" || rest == "" {
		return rates.Key{}, fmt.Errorf("%w: bad key %q", domain.ErrDocumentParse, s)
	}
	to, date, _ := strings.Cut(rest, "_")
	if to == "" {
		return rates.Key{}, fmt.Errorf("%w: bad key %q", domain.ErrDocumentParse, s)
	}
	return rates.Key{From: domain.Currency(from), To: domain.Currency(to), Date: date}, nil
}
