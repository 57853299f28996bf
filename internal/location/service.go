package location

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"prizewheel/internal/logger/sl"
)

// Service runs the location flow: detect from the IP, or let the visitor
// pick a state and a city.
type Service struct {
	geo  *GeoClient
	ibge *IBGEClient
	log  *slog.Logger
}

func NewService(geo *GeoClient, ibge *IBGEClient, log *slog.Logger) *Service {
	if log == nil {
		log = sl.Discard()
	}
	return &Service{geo: geo, ibge: ibge, log: log}
}

// Detect never fails: lookup errors and empty fields fall back to the
// placeholders.
func (s *Service) Detect(ctx context.Context, ip string) Location {
	loc, err := s.geo.Lookup(ctx, ip)
	if err != nil {
		s.log.Warn("ip location lookup failed", sl.Err(err))
		return Default()
	}
	return loc.orDefault()
}

func (s *Service) States(ctx context.Context) ([]State, error) {
	return s.ibge.States(ctx)
}

func (s *Service) Cities(ctx context.Context, stateID int) ([]City, error) {
	return s.ibge.Cities(ctx, stateID)
}

// Suggest returns the state the detected region most likely refers to.
func (s *Service) Suggest(ctx context.Context, region string) (State, bool) {
	states, err := s.ibge.States(ctx)
	if err != nil {
		return State{}, false
	}
	return MatchState(states, region)
}

// Choose validates a manual pick against the IBGE lists. The stored region
// is "Nome - UF".
func (s *Service) Choose(ctx context.Context, stateID int, city string) (Location, error) {
	states, err := s.ibge.States(ctx)
	if err != nil {
		return Location{}, err
	}
	var state State
	found := false
	for _, st := range states {
		if st.ID == stateID {
			state, found = st, true
			break
		}
	}
	if !found {
		return Location{}, fmt.Errorf("state %d: %w", stateID, ErrUnknownState)
	}

	cities, err := s.ibge.Cities(ctx, stateID)
	if err != nil {
		return Location{}, err
	}
	city = strings.TrimSpace(city)
	for _, c := range cities {
		if c.Nome == city {
			return Location{City: c.Nome, Region: state.Region()}, nil
		}
	}
	return Location{}, fmt.Errorf("city %q in %s: %w", city, state.Sigla, ErrUnknownCity)
}
