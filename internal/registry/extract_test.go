package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultPage = `
<html><body><div id="resultados">
  <div class="text-center">23 resultados encontrados</div>
  <div class="resultado-item">
    <h4>DR. JOÃO DA SILVA</h4>
    <div class="col-md-4">CRM: 12345</div>
    <div class="endereco">Endereço: RUA DAS FLORES, 100 - CENTRO - SÃO LUÍS/MA</div>
  </div>
  <div class="resultado-item">
    <h4>DRA. MARIA SOUZA</h4>
    <div class="col-md-4">CRM: 67890</div>
  </div>
  <div class="resultado-item">
    <h4>DR. SEM CRM</h4>
    <div class="col-md-4">registro ausente</div>
    <div class="endereco">Endereço: AV. BRASIL - IMPERATRIZ/MA</div>
  </div>
</div></body></html>`

func TestExtractRecords(t *testing.T) {
	records, err := ExtractRecords(resultPage, "SP")
	require.NoError(t, err)

	// The third item has no labeled registration number and is skipped.
	require.Len(t, records, 2)

	assert.Equal(t, "DR. JOÃO DA SILVA", records[0].Name)
	assert.Equal(t, "12345", records[0].Registration)
	assert.Equal(t, "SÃO LUÍS", records[0].City)
	assert.Equal(t, "", records[0].BirthDate)

	// No address block: the city falls back to N/A.
	assert.Equal(t, "DRA. MARIA SOUZA", records[1].Name)
	assert.Equal(t, "N/A", records[1].City)
}

func TestExtractRecordsForcesSearchState(t *testing.T) {
	// Page shows BA; the search asked for SP, so SP wins.
	html := `<div class="resultado-item">
		<h4>DR. X</h4>
		<div class="col-md-4">CRM: 1</div>
		<div class="endereco">Endereço: RUA A - SALVADOR/BA</div>
	</div>`
	records, err := ExtractRecords(html, "SP")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SP", records[0].State)
	assert.Equal(t, "SALVADOR", records[0].City)
}

func TestExtractRecordsEmptyPage(t *testing.T) {
	records, err := ExtractRecords("<html><body></body></html>", "MA")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		wantStreet string
		wantCity   string
	}{
		{
			name:       "street, district and city with UF",
			address:    "RUA DAS FLORES, 100 - CENTRO - SÃO LUÍS/MA",
			wantStreet: "RUA DAS FLORES, 100",
			wantCity:   "SÃO LUÍS",
		},
		{
			name:       "city segment without slash used verbatim",
			address:    "AV. BRASIL - IMPERATRIZ",
			wantStreet: "AV. BRASIL",
			wantCity:   "IMPERATRIZ",
		},
		{
			name:       "no delimiter means no city",
			address:    "RUA ÚNICA 42",
			wantStreet: "RUA ÚNICA 42",
			wantCity:   "N/A",
		},
		{
			name:       "unavailable sentinel",
			address:    "Não disponível",
			wantStreet: "Não disponível",
			wantCity:   "N/A",
		},
		{
			name:       "trailing empty segment",
			address:    "RUA A - ",
			wantStreet: "RUA A",
			wantCity:   "N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			street, city := ParseAddress(tt.address)
			assert.Equal(t, tt.wantStreet, street)
			assert.Equal(t, tt.wantCity, city)
		})
	}
}

func TestSearchParamsValidate(t *testing.T) {
	assert.ErrorIs(t, SearchParams{}.Validate(), ErrMissingState)
	assert.NoError(t, SearchParams{State: "MA"}.Validate())
}
