package registry

import "errors"

// SearchParams are the registry search form filters. State is the only
// required field; the rest narrow the search when present.
type SearchParams struct {
	Name           string `json:"nome"`
	State          string `json:"uf" binding:"required"`
	Status         string `json:"situacao"`
	Specialty      string `json:"especialidade"`
	AreaOfPractice string `json:"area_atuacao"`
}

var ErrMissingState = errors.New("search state (UF) is required")

func (p SearchParams) Validate() error {
	if p.State == "" {
		return ErrMissingState
	}
	return nil
}

// DoctorRecord is one parsed result item. State always carries the search's
// requested UF, never the value rendered on the page.
type DoctorRecord struct {
	Name         string `json:"nome"`
	Registration string `json:"crm"`
	City         string `json:"cidade"`
	State        string `json:"uf"`
	BirthDate    string `json:"dt_nascimento"`
}
