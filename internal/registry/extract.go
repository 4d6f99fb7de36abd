package registry

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const addressUnavailable = "Não disponível"

// ExtractRecords parses the rendered result page into DoctorRecords. A record
// that fails to parse is logged and skipped; extraction continues with the
// next item. searchState overrides whatever UF the page renders.
func ExtractRecords(html, searchState string) ([]DoctorRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var records []DoctorRecord
	doc.Find("div.resultado-item").Each(func(i int, item *goquery.Selection) {
		record, err := extractItem(item, searchState)
		if err != nil {
			log.Printf("Skipping result item %d: %v", i, err)
			return
		}
		records = append(records, record)
	})
	return records, nil
}

func extractItem(item *goquery.Selection, searchState string) (DoctorRecord, error) {
	name := strings.TrimSpace(item.Find("h4").First().Text())
	if name == "" {
		return DoctorRecord{}, fmt.Errorf("result item has no name heading")
	}

	crm, err := textAfterColon(item.Find("div.col-md-4").First().Text())
	if err != nil {
		return DoctorRecord{}, fmt.Errorf("registration number: %w", err)
	}

	fullAddress := addressUnavailable
	if addrDiv := item.Find("div.endereco").First(); addrDiv.Length() > 0 {
		fullAddress, err = textAfterColon(addrDiv.Text())
		if err != nil {
			return DoctorRecord{}, fmt.Errorf("address: %w", err)
		}
	}

	_, city := ParseAddress(fullAddress)

	return DoctorRecord{
		Name:         name,
		Registration: crm,
		City:         city,
		State:        searchState,
		BirthDate:    "",
	}, nil
}

// ParseAddress splits a registry address on " - ": the street is the first
// segment and the city/UF the last. City is the part before "/" when the
// segment carries one, the whole segment otherwise, or "N/A" when absent.
func ParseAddress(fullAddress string) (street, city string) {
	parts := strings.Split(fullAddress, " - ")
	street = strings.TrimSpace(parts[0])

	cityUF := ""
	if len(parts) > 1 {
		cityUF = strings.TrimSpace(parts[len(parts)-1])
	}

	switch {
	case strings.Contains(cityUF, "/"):
		city = strings.TrimSpace(strings.SplitN(cityUF, "/", 2)[0])
	case cityUF != "":
		city = cityUF
	default:
		city = "N/A"
	}
	return street, city
}

// textAfterColon pulls the value out of a "Label: value" fragment.
func textAfterColon(s string) (string, error) {
	_, after, found := strings.Cut(s, ":")
	if !found {
		return "", fmt.Errorf("no labeled colon in %q", strings.TrimSpace(s))
	}
	return strings.TrimSpace(after), nil
}
