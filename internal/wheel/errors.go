package wheel

import "errors"

var (
	ErrEmptyCatalog   = errors.New("catalog needs at least one prize")
	ErrEmptyPrizeName = errors.New("prize name is empty")
	ErrDuplicatePrize = errors.New("duplicate prize name")
	ErrSpinInProgress = errors.New("spin already in progress")
	ErrNotInteractive = errors.New("widget is not interactive")
	ErrWidgetNotFound = errors.New("widget not found")
)
