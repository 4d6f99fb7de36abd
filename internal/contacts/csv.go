// Package contacts handles the semicolon-delimited CSV contracts: the
// enriched contact list uploaded by the operator and the search result export.
package contacts

import (
	"encoding/csv"
	"fmt"
	"io"

	"doctor-outreach/internal/registry"
)

// RequiredColumns are the headers an enriched CSV must carry. Validation runs
// before any side effect; a missing column aborts the whole upload.
var RequiredColumns = []string{
	"NOME", "CPF/CNPJ", "DDD", "FONE", "EMAIL-1",
	"CIDADE", "UF", "CEP", "FULL-LOGRADOURO",
}

// Contact is one row of the enriched CSV. Fields keeps every column keyed by
// header name so templates can reference any of them.
type Contact struct {
	Name        string `json:"nome"`
	TaxID       string `json:"cpf_cnpj"`
	AreaCode    string `json:"ddd"`
	Phone       string `json:"fone"`
	Email       string `json:"email"`
	City        string `json:"cidade"`
	State       string `json:"uf"`
	PostalCode  string `json:"cep"`
	FullAddress string `json:"full_logradouro"`

	Fields map[string]string `json:"-"`
}

// LoadEnriched reads and validates an enriched contact CSV (semicolon
// delimited, UTF-8).
func LoadEnriched(r io.Reader) ([]Contact, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var rows []Contact
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", len(rows)+2, err)
		}

		fields := make(map[string]string, len(header))
		for col, i := range index {
			if i < len(record) {
				fields[col] = record[i]
			}
		}

		rows = append(rows, Contact{
			Name:        fields["NOME"],
			TaxID:       fields["CPF/CNPJ"],
			AreaCode:    fields["DDD"],
			Phone:       fields["FONE"],
			Email:       fields["EMAIL-1"],
			City:        fields["CIDADE"],
			State:       fields["UF"],
			PostalCode:  fields["CEP"],
			FullAddress: fields["FULL-LOGRADOURO"],
			Fields:      fields,
		})
	}
	return rows, nil
}

// WriteResults encodes search results as the NOME;CIDADE;UF;DT_NASCIMENTO
// export consumed by the enrichment provider.
func WriteResults(w io.Writer, records []registry.DoctorRecord) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write([]string{"NOME", "CIDADE", "UF", "DT_NASCIMENTO"}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write([]string{rec.Name, rec.City, rec.State, rec.BirthDate}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
