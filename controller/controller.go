// Package controller drives the detect, convert and present cycle over
// one document and exposes the control-message surface used by the CLI
// and the API.
package controller

import (
	"context"
	"math"
	"strconv"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"worktime-annotator/annotator"
	"worktime-annotator/convert"
	"worktime-annotator/internal/dom"
	"worktime-annotator/internal/types"
	"worktime-annotator/scanner"
	"worktime-annotator/storage"
)

// Controller owns the pass lifecycle for a single document. The mutex
// doubles as the in-flight flag: a trigger that lands while a pass holds
// the lock re-arms the debounce timer instead of running concurrently.
type Controller struct {
	mu       sync.Mutex
	cfg      *types.Config
	logger   types.Logger
	store    storage.Store
	scanner  *scanner.Scanner
	session  *annotator.Session
	debounce *Debouncer

	active  bool
	entries []types.PriceEntry
}

// New creates a controller bound to one document.
func New(doc *goquery.Document, store storage.Store, cfg *types.Config, logger types.Logger) *Controller {
	c := &Controller{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		scanner: scanner.New(logger),
		session: annotator.NewSession(doc, logger),
		active:  true,
	}
	c.debounce = NewDebouncer(cfg.DebounceDelay, func() {
		c.pass(context.Background())
	})
	return c
}

// Session exposes the presentation session, mainly for rendering the
// annotated document afterwards.
func (c *Controller) Session() *annotator.Session {
	return c.session
}

// Trigger notes an observed content change. Bursts collapse into one
// pass after the debounce delay.
func (c *Controller) Trigger() {
	c.debounce.Trigger()
}

// Reprocess runs a full pass immediately.
func (c *Controller) Reprocess(ctx context.Context) {
	c.pass(ctx)
}

// pass is one full detect → convert → present cycle. Per-item failures
// never abort the pass; the worst case is a stale annotation set that
// the next pass corrects.
func (c *Controller) pass(ctx context.Context) {
	if !c.mu.TryLock() {
		// A pass is in flight; fold this one into a later timer fire.
		c.debounce.Trigger()
		return
	}
	defer c.mu.Unlock()

	if !c.active {
		return
	}

	settings := c.loadSettings(ctx)

	candidates := c.scanner.Scan(c.session.Doc())

	annEntries := make([]annotator.Entry, 0, len(candidates))
	entries := make([]types.PriceEntry, 0, len(candidates))
	for i, cand := range candidates {
		res := convert.Convert(cand.Price, settings.HourlyWage)

		tierValue := cand.Price
		if settings.Tiers.Type == "hours" {
			tierValue = float64(res.Hours)
		}
		tier := convert.TierColor(tierValue, settings.Tiers)

		dom.SetAttr(cand.Node, types.AttrHours, formatHoursAttr(float64(res.Hours)))
		dom.SetAttr(cand.Node, types.AttrHoursLabel, res.Formatted)

		annEntries = append(annEntries, annotator.Entry{
			Node:      cand.Node,
			Price:     cand.Price,
			Formatted: res.Formatted,
			Tier:      tier,
		})
		entries = append(entries, types.PriceEntry{
			Index:     i,
			Price:     cand.Price,
			Hours:     res.Hours,
			Formatted: res.Formatted,
			Tier:      tier,
			Text:      cand.OriginalText,
		})
	}

	// Reset first so the two display modes can never coexist; with the
	// show-hours flag off the reset is the whole presentation step.
	c.session.Reset()
	if settings.ShowHours {
		switch settings.DisplayMode {
		case types.ModeReplace:
			c.session.ApplyReplace(annEntries)
		default:
			c.session.ApplySideBySide(annEntries)
		}
	}

	c.entries = entries
	c.logger.Infof("Pass complete: %d prices annotated (mode=%s, show=%v)",
		len(entries), settings.DisplayMode, settings.ShowHours)
}

// loadSettings reads user settings, degrading to the documented defaults
// when the store fails.
func (c *Controller) loadSettings(ctx context.Context) types.Settings {
	settings, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warnf("Settings unavailable, using defaults: %v", err)
		return types.DefaultSettings()
	}
	return settings
}

// CurrentPrices returns the entries of the most recent pass.
func (c *Controller) CurrentPrices() []types.PriceEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.PriceEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// SetActive activates or deactivates processing. Deactivation reverts
// all presentation, strips detection metadata and clears state, leaving
// the document pristine.
func (c *Controller) SetActive(ctx context.Context, active bool) {
	c.mu.Lock()
	wasActive := c.active
	c.active = active
	if !active && wasActive {
		c.debounce.Stop()
		c.session.Deactivate()
		c.entries = nil
	}
	c.mu.Unlock()

	if active && !wasActive {
		c.pass(ctx)
	}
}

// SetDisplayMode validates and persists a new display mode, then
// reapplies presentation. An invalid mode is rejected with no state
// change.
func (c *Controller) SetDisplayMode(ctx context.Context, mode string) error {
	if mode != types.ModeSideBySide && mode != types.ModeReplace {
		return &InvalidModeError{Mode: mode}
	}

	settings := c.loadSettings(ctx)
	settings.DisplayMode = mode
	if err := c.store.Save(ctx, settings); err != nil {
		return err
	}

	c.pass(ctx)
	return nil
}

// SetShowHours persists the show-hours flag and reapplies. Off means the
// next pass reverts presentation and applies nothing.
func (c *Controller) SetShowHours(ctx context.Context, show bool) error {
	settings := c.loadSettings(ctx)
	settings.ShowHours = show
	if err := c.store.Save(ctx, settings); err != nil {
		return err
	}

	c.pass(ctx)
	return nil
}

// Close stops the debounce timer. The document is left as-is; use
// SetActive(false) first for a clean revert.
func (c *Controller) Close() {
	c.debounce.Stop()
}

// InvalidModeError rejects an unknown display mode.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return "invalid display mode: " + strconv.Quote(e.Mode)
}

// formatHoursAttr renders the hours metadata attribute; invalid hours
// write as an empty value rather than "NaN".
func formatHoursAttr(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return ""
	}
	return strconv.FormatFloat(hours, 'f', -1, 64)
}
