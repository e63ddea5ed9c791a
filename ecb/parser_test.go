package ecb

import (
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-ecb-exchange-bank/domain"
	"testing"
	"time"
)

const dailyDocument = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<gesmes:Sender>
		<gesmes:name>European Central Bank</gesmes:name>
	</gesmes:Sender>
	<Cube>
		<Cube time='2024-01-05'>
			<Cube currency='USD' rate='1.0887'/>
			<Cube currency='JPY' rate='157.86'/>
			<Cube currency='GBP' rate='0.85950'/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

const historicalDocument = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<Cube>
		<Cube time="2024-01-05">
			<Cube currency="USD" rate="1.0887"/>
		</Cube>
		<Cube time="2024-01-04">
			<Cube currency="USD" rate="1.0953"/>
			<Cube currency="GBP" rate="0.8630"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

func TestParse_Daily(t *testing.T) {
	doc, err := Parse(dailyDocument)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05", doc.AsOf)
	require.Len(t, doc.Days, 1)
	require.Len(t, doc.Days[0].Quotes, 3)
	assert.Equal(t, domain.Currency("USD"), doc.Days[0].Quotes[0].Currency)
	assert.True(t, doc.Days[0].Quotes[0].Rate.Equal(decimal.RequireFromString("1.0887")))
	assert.Equal(t, "0.8595", doc.Days[0].Quotes[2].Rate.String())

	asOf, err := doc.AsOfTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), asOf)
}

func TestParse_Historical(t *testing.T) {
	doc, err := Parse(historicalDocument)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-05", doc.AsOf)
	require.Len(t, doc.Days, 2)
	assert.Equal(t, "2024-01-04", doc.Days[1].Date)
	assert.Len(t, doc.Days[1].Quotes, 2)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{"empty", ""},
		{"not xml", "this is not xml"},
		{"truncated", dailyDocument[:len(dailyDocument)/2]},
		{"no days", `<Envelope><Cube></Cube></Envelope>`},
		{"bad rate", `<Envelope><Cube><Cube time="2024-01-05"><Cube currency="USD" rate="abc"/></Cube></Cube></Envelope>`},
		{"bad date", `<Envelope><Cube><Cube time="yesterday"><Cube currency="USD" rate="1.1"/></Cube></Cube></Envelope>`},
		{"missing currency", `<Envelope><Cube><Cube time="2024-01-05"><Cube rate="1.1"/></Cube></Cube></Envelope>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.document)
			assert.ErrorIs(t, err, domain.ErrDocumentParse)
		})
	}
}
