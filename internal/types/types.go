package types

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"golang.org/x/net/html"
)

// Display modes for detected prices.
const (
	ModeSideBySide = "side-by-side"
	ModeReplace    = "replace"
)

// DOM output contract. Consumers (report readers, future UI layers) rely
// on these literal attribute names and on DetectedFlag's literal value.
const (
	AttrDetected   = "data-worktime-detected"
	AttrPrice      = "data-worktime-price"
	AttrIndex      = "data-worktime-index"
	AttrHours      = "data-worktime-hours"
	AttrHoursLabel = "data-worktime-hours-label"
	AttrReplaced   = "data-worktime-replaced"

	DetectedFlag = "true"

	// BadgeClass marks injected badge elements and is also how the
	// scanner recognizes (and skips) this tool's own output.
	BadgeClass = "worktime-badge"
)

// PriceCandidate is a detected price on the page. Node is a non-owning
// reference into the live document: the page owns its nodes and may drop
// them between passes, so consumers must re-check attachment before use.
type PriceCandidate struct {
	Node         *html.Node
	Price        float64
	OriginalText string
}

// Hours is a work-hours value. NaN marks "unknown" (wage unset, invalid
// input) and serializes as JSON null, since encoding/json rejects NaN.
type Hours float64

func (h Hours) MarshalJSON() ([]byte, error) {
	f := float64(h)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (h *Hours) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = Hours(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*h = Hours(f)
	return nil
}

// ConversionResult is the work-hours equivalent of one detected price.
// Hours is NaN when the input was invalid (wage unset, negative price);
// Formatted is always set, falling back to "N/A".
type ConversionResult struct {
	Price     float64 `json:"price"`
	Hours     Hours   `json:"hours"`
	Formatted string  `json:"formatted"`
}

// PriceEntry is one row of the current-prices report exposed to the CLI,
// the API and any future UI layer.
type PriceEntry struct {
	Index     int     `json:"index"`
	Price     float64 `json:"price"`
	Hours     Hours   `json:"hours"`
	Formatted string  `json:"formatted"`
	Tier      string  `json:"tier"`
	Text      string  `json:"text"`
}

// TierSettings governs the green/yellow/red classification of a value.
// Type selects what gets classified: the raw price or the computed hours.
type TierSettings struct {
	Type   string  `json:"type"` // "money" or "hours"
	Green  float64 `json:"green"`
	Yellow float64 `json:"yellow"`
	Red    float64 `json:"red"`
}

// Validate checks the threshold ordering invariant.
func (t TierSettings) Validate() error {
	if t.Type != "money" && t.Type != "hours" {
		return fmt.Errorf("invalid tier type: %q", t.Type)
	}
	if t.Green < 0 || t.Green > t.Yellow || t.Yellow > t.Red {
		return fmt.Errorf("tier thresholds must satisfy 0 <= green <= yellow <= red, got %v/%v/%v", t.Green, t.Yellow, t.Red)
	}
	return nil
}

// Settings holds the user-facing configuration read from the settings store.
type Settings struct {
	HourlyWage  float64      `json:"hourly_wage"`
	DisplayMode string       `json:"display_mode"`
	ShowHours   bool         `json:"show_hours"`
	Tiers       TierSettings `json:"tiers"`
}

// DefaultSettings returns the documented defaults: wage unset, side-by-side
// badges, hours shown, money tiers at 0/50/100.
func DefaultSettings() Settings {
	return Settings{
		HourlyWage:  0,
		DisplayMode: ModeSideBySide,
		ShowHours:   true,
		Tiers:       TierSettings{Type: "money", Green: 0, Yellow: 50, Red: 100},
	}
}

// Config holds the runtime configuration for fetching and processing
type Config struct {
	RequestDelay       time.Duration
	MaxRetries         int
	Timeout            time.Duration
	UseHeadlessBrowser bool
	UserAgent          string
	DebounceDelay      time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       1 * time.Second,
		MaxRetries:         3,
		Timeout:            30 * time.Second,
		UseHeadlessBrowser: true,
		UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		DebounceDelay:      300 * time.Millisecond,
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
