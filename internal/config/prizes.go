package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"prizewheel/internal/wheel"
)

//go:embed prizes.yaml
var defaultPrizes []byte

var ErrInvalidPrizes = errors.New("invalid prize file")

// PrizeFile is the YAML prize catalog.
type PrizeFile struct {
	DefaultBlocked string          `yaml:"default_blocked"`
	Rotations      *Rotations      `yaml:"rotations"`
	Surfaces       *wheel.Surfaces `yaml:"surfaces"`
	Prizes         []PrizeEntry    `yaml:"prizes" validate:"required,min=1,dive"`
}

type Rotations struct {
	Min int `yaml:"min" validate:"gte=0,lte=50"`
	Max int `yaml:"max" validate:"gtefield=Min,lte=50"`
}

type PrizeEntry struct {
	Name  string `yaml:"name" validate:"required"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color" validate:"required,hexcolor"`
}

// LoadPrizes reads path, or the bundled catalog when path is empty.
func LoadPrizes(path string) (PrizeFile, error) {
	data := defaultPrizes
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return PrizeFile{}, fmt.Errorf("read prizes: %w", err)
		}
	}
	return ParsePrizes(data)
}

// ParsePrizes decodes and validates a prize file.
func ParsePrizes(data []byte) (PrizeFile, error) {
	var pf PrizeFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return PrizeFile{}, fmt.Errorf("%w: %w", ErrInvalidPrizes, err)
	}
	if err := validator.New().Struct(pf); err != nil {
		return PrizeFile{}, fmt.Errorf("%w: %s", ErrInvalidPrizes, describe(err))
	}

	seen := make(map[string]struct{}, len(pf.Prizes))
	for _, p := range pf.Prizes {
		if _, ok := seen[p.Name]; ok {
			return PrizeFile{}, fmt.Errorf("%w: duplicate prize %q", ErrInvalidPrizes, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	if pf.DefaultBlocked != "" {
		if _, ok := seen[pf.DefaultBlocked]; !ok {
			return PrizeFile{}, fmt.Errorf("%w: default_blocked %q is not a prize", ErrInvalidPrizes, pf.DefaultBlocked)
		}
	}
	return pf, nil
}

// WheelPrizes converts the entries in order.
func (pf PrizeFile) WheelPrizes() []wheel.Prize {
	out := make([]wheel.Prize, 0, len(pf.Prizes))
	for _, p := range pf.Prizes {
		out = append(out, wheel.Prize{Name: p.Name, Icon: p.Icon, Color: p.Color})
	}
	return out
}

// SpinOptions combines the animation duration with the file's rotation
// range, defaulting to 6-8 turns.
func (pf PrizeFile) SpinOptions(duration time.Duration) wheel.SpinOptions {
	opts := wheel.DefaultSpinOptions()
	opts.Duration = duration
	if pf.Rotations != nil {
		opts.MinRotations = pf.Rotations.Min
		opts.MaxRotations = pf.Rotations.Max
	}
	return opts
}

// SurfacesOrDefault returns the configured surfaces, or the bundled page ids.
func (pf PrizeFile) SurfacesOrDefault() wheel.Surfaces {
	if pf.Surfaces == nil {
		return wheel.DefaultSurfaces()
	}
	return *pf.Surfaces
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Namespace()))
		case "hexcolor":
			msgs = append(msgs, fmt.Sprintf("field %s must be a hex color", e.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Namespace()))
		}
	}
	return strings.Join(msgs, ", ")
}
