package ecb

import (
	"encoding/xml"
	"fmt"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/domain"
	"strings"
	"time"
)

// DateLayout the layout of the time attribute on ECB date groups
const DateLayout = "2006-01-02"

// Quote one EUR rate: 1 EUR buys Rate units of Currency
type Quote struct {
	Currency domain.Currency
	Rate     decimal.Decimal
}

// Day the quotes published for one date
type Day struct {
	Date   string
	Quotes []Quote
}

// Document a parsed rates feed. The daily feed carries one Day, the historical feeds many, newest first.
type Document struct {
	// AsOf the date of the newest Day
	AsOf string
	Days []Day
}

// AsOfTime parses AsOf
func (d *Document) AsOfTime() (time.Time, error) {
	return time.Parse(DateLayout, d.AsOf)
}

// envelope mirrors the gesmes:Envelope published by the ECB
type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Cube    struct {
		Days []struct {
			Time  string `xml:"time,attr"`
			Rates []struct {
				Currency string `xml:"currency,attr"`
				Rate     string `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

// Parse decodes an ECB rates document. Every failure wraps domain.ErrDocumentParse.
func Parse(document string) (*Document, error) {
	var env envelope
	if err := xml.Unmarshal([]byte(document), &env); err != nil {
		return nil, fmt.Errorf("%w: decoding xml: %v", domain.ErrDocumentParse, err)
	}
	if len(env.Cube.Days) == 0 {
		return nil, fmt.Errorf("%w: no dated rates", domain.ErrDocumentParse)
	}

	doc := &Document{
		Days: make([]Day, 0, len(env.Cube.Days)),
	}
	for _, d := range env.Cube.Days {
		date := strings.TrimSpace(d.Time)
		if _, err := time.Parse(DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: bad date [%v]: %v", domain.ErrDocumentParse, d.Time, err)
		}
		day := Day{
			Date:   date,
			Quotes: make([]Quote, 0, len(d.Rates)),
		}
		for _, r := range d.Rates {
			currency := domain.Currency(r.Currency).Normalize()
			if currency == "" {
				return nil, fmt.Errorf("%w: missing currency on %v", domain.ErrDocumentParse, date)
			}
			rate, err := decimal.NewFromString(strings.TrimSpace(r.Rate))
			if err != nil {
				return nil, fmt.Errorf("%w: bad rate [%v %v]: %v", domain.ErrDocumentParse, currency, r.Rate, err)
			}
			day.Quotes = append(day.Quotes, Quote{Currency: currency, Rate: rate})
		}
		doc.Days = append(doc.Days, day)
	}
	doc.AsOf = doc.Days[0].Date

	return doc, nil
}
