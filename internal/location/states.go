package location

import "strings"

var ufByState = map[string]string{
	"Rondônia": "RO", "Acre": "AC", "Amazonas": "AM", "Roraima": "RR", "Pará": "PA",
	"Amapá": "AP", "Tocantins": "TO", "Maranhão": "MA", "Piauí": "PI", "Ceará": "CE",
	"Rio Grande do Norte": "RN", "Paraíba": "PB", "Pernambuco": "PE", "Alagoas": "AL", "Sergipe": "SE",
	"Bahia": "BA", "Minas Gerais": "MG", "Espírito Santo": "ES", "Rio de Janeiro": "RJ", "São Paulo": "SP",
	"Paraná": "PR", "Santa Catarina": "SC", "Rio Grande do Sul": "RS", "Mato Grosso do Sul": "MS", "Mato Grosso": "MT",
	"Goiás": "GO", "Distrito Federal": "DF",
}

// UFOf returns the two-letter code of a Brazilian state name.
func UFOf(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if uf, ok := ufByState[name]; ok {
		return uf, true
	}
	for state, uf := range ufByState {
		if strings.EqualFold(state, name) {
			return uf, true
		}
	}
	return "", false
}

// MatchState finds the state a detected region refers to. The region may be
// a full name, a UF code or a fragment of the "Nome (UF)" label.
func MatchState(states []State, region string) (State, bool) {
	region = strings.TrimSpace(region)
	if region == "" {
		return State{}, false
	}
	uf, hasUF := UFOf(region)
	for _, s := range states {
		if strings.EqualFold(s.Nome, region) || strings.EqualFold(s.Sigla, region) {
			return s, true
		}
		if hasUF && s.Sigla == uf {
			return s, true
		}
	}
	for _, s := range states {
		if strings.Contains(s.Label(), region) {
			return s, true
		}
	}
	return State{}, false
}
