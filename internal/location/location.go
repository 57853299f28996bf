package location

import (
	"errors"
	"fmt"
	"net"
)

const (
	DefaultCity   = "Sua Cidade"
	DefaultRegion = "Seu Estado"
)

var (
	ErrUpstream     = errors.New("location upstream failed")
	ErrUnknownState = errors.New("unknown state")
	ErrUnknownCity  = errors.New("unknown city")
)

// Location is what the page shows as the visitor's delivery area.
type Location struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

// Default is shown when nothing better is known.
func Default() Location {
	return Location{City: DefaultCity, Region: DefaultRegion}
}

// IsDefault reports whether l is the placeholder location.
func (l Location) IsDefault() bool {
	return l == Default()
}

// orDefault fills empty fields with the placeholders.
func (l Location) orDefault() Location {
	if l.City == "" {
		l.City = DefaultCity
	}
	if l.Region == "" {
		l.Region = DefaultRegion
	}
	return l
}

// State is an IBGE federative unit.
type State struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

// Label is the option text shown in the state picker.
func (s State) Label() string {
	return fmt.Sprintf("%s (%s)", s.Nome, s.Sigla)
}

// Region is the value stored for a manually chosen state.
func (s State) Region() string {
	return s.Nome + " - " + s.Sigla
}

// City is an IBGE municipality.
type City struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// publicIP returns ip when it is a routable address worth looking up.
func publicIP(ip string) (string, bool) {
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return "", false
	}
	return parsed.String(), true
}
