package annotator

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime-annotator/internal/dom"
	"worktime-annotator/internal/types"
)

const fixture = `
<html><body>
  <div class="card">
    <span id="p1" class="product-price" style="font-size: 14px; color: rgb(20, 20, 20)">$19.99</span>
  </div>
  <div class="card">
    <span id="p2" class="price-item" title="regular price">$50.00</span>
  </div>
</body></html>`

func newSession(t *testing.T) (*Session, []Entry) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixture))
	require.NoError(t, err)

	s := NewSession(doc, logrus.New())
	entries := []Entry{
		{Node: doc.Find("#p1").Get(0), Price: 19.99, Formatted: "1h", Tier: "green"},
		{Node: doc.Find("#p2").Get(0), Price: 50.00, Formatted: "2.5h", Tier: "yellow"},
	}
	return s, entries
}

func TestApplySideBySide_InjectsOneBadgePerPrice(t *testing.T) {
	s, entries := newSession(t)

	s.ApplySideBySide(entries)

	badges := s.Doc().Find("." + types.BadgeClass)
	require.Equal(t, 2, badges.Length())
	assert.Equal(t, 2, s.BadgeCount())

	// Badge is the immediately-following sibling, outside the price element
	next := s.Doc().Find("#p1").Get(0).NextSibling
	assert.Equal(t, "span", next.Data)
	assert.Equal(t, "1h", dom.Text(next))
	// Price element subtree untouched
	assert.Equal(t, "$19.99", s.Doc().Find("#p1").Text())
}

func TestApplySideBySide_SecondPassDoesNotDuplicate(t *testing.T) {
	s, entries := newSession(t)

	s.ApplySideBySide(entries)
	s.ApplySideBySide(entries)

	assert.Equal(t, 2, s.Doc().Find("."+types.BadgeClass).Length())
}

func TestApplySideBySide_ReusesUntrackedSiblingBadge(t *testing.T) {
	s, entries := newSession(t)
	s.ApplySideBySide(entries)

	// A fresh session (tracking lost) must still discover the badge
	s2 := NewSession(s.Doc(), logrus.New())
	s2.ApplySideBySide(entries)

	assert.Equal(t, 2, s.Doc().Find("."+types.BadgeClass).Length())
}

func TestApplySideBySide_UpdatesBadgeWhenHoursChange(t *testing.T) {
	s, entries := newSession(t)
	s.ApplySideBySide(entries)

	entries[0].Formatted = "4h"
	s.ApplySideBySide(entries)

	badges := s.Doc().Find("." + types.BadgeClass)
	require.Equal(t, 2, badges.Length())
	assert.Equal(t, "4h", badges.First().Text())
}

func TestApplySideBySide_CopiesFontStyles(t *testing.T) {
	s, entries := newSession(t)
	s.ApplySideBySide(entries)

	badge := s.Doc().Find("#p1").Get(0).NextSibling
	assert.Equal(t, "14px", dom.StyleProp(badge, "font-size"))
	assert.Equal(t, "rgb(20, 20, 20)", dom.StyleProp(badge, "color"))
	assert.Equal(t, "#e8f5e9", dom.StyleProp(badge, "background-color"))
}

func TestApplyReplace_OverwritesTextAndMarks(t *testing.T) {
	s, entries := newSession(t)
	s.ApplyReplace(entries)

	p1 := s.Doc().Find("#p1")
	assert.Equal(t, "1h", p1.Text())
	assert.Equal(t, "true", p1.AttrOr(types.AttrReplaced, ""))
	assert.Contains(t, p1.AttrOr("title", ""), "$19.99")
	assert.Equal(t, "inline-block", dom.StyleProp(p1.Get(0), "display"))
	assert.Equal(t, 2, s.ReplacedCount())
}

func TestApplyReplace_SnapshotIsNotOverwritten(t *testing.T) {
	s, entries := newSession(t)
	s.ApplyReplace(entries)

	// A second pass while the replacement stands must not re-snapshot
	// the replaced text as if it were the original.
	s.ApplyReplace(entries)
	s.Reset()

	assert.Equal(t, "$19.99", s.Doc().Find("#p1").Text())
}

func TestReset_RestoresOriginalState(t *testing.T) {
	s, entries := newSession(t)

	p2Before, err := s.Doc().Find("#p2").Html()
	require.NoError(t, err)

	s.ApplyReplace(entries)
	s.Reset()

	p2After, err := s.Doc().Find("#p2").Html()
	require.NoError(t, err)
	assert.Equal(t, p2Before, p2After)

	p2 := s.Doc().Find("#p2")
	assert.Equal(t, "$50.00", p2.Text())
	assert.Equal(t, "regular price", p2.AttrOr("title", ""))
	assert.False(t, p2.Get(0) != nil && dom.HasAttr(p2.Get(0), types.AttrReplaced))
	assert.Equal(t, 0, s.ReplacedCount())
}

func TestReset_RemovesBadgesBeyondTracking(t *testing.T) {
	s, entries := newSession(t)
	s.ApplySideBySide(entries)

	// Simulate tracking loss: a new session still clears everything
	s2 := NewSession(s.Doc(), logrus.New())
	s2.Reset()

	assert.Equal(t, 0, s.Doc().Find("."+types.BadgeClass).Length())
}

func TestReset_IsIdempotent(t *testing.T) {
	s, entries := newSession(t)
	s.ApplyReplace(entries)

	s.Reset()
	s.Reset()

	assert.Equal(t, "$19.99", s.Doc().Find("#p1").Text())
}

func TestModeSwitch_ReplaceThenSideBySide(t *testing.T) {
	s, entries := newSession(t)

	s.ApplyReplace(entries)
	s.Reset()
	s.ApplySideBySide(entries)

	// Original price text back, badges alongside
	assert.Equal(t, "$19.99", s.Doc().Find("#p1").Text())
	assert.Equal(t, 2, s.Doc().Find("."+types.BadgeClass).Length())
}

func TestMutualExclusion_ReplacedElementGetsNoBadge(t *testing.T) {
	s, entries := newSession(t)

	s.ApplyReplace(entries)
	s.ApplySideBySide(entries)

	assert.Equal(t, 0, s.Doc().Find("."+types.BadgeClass).Length())
	assert.Equal(t, 0, s.BadgeCount())
}

func TestDetachedElementsAreSkipped(t *testing.T) {
	s, entries := newSession(t)

	dom.Detach(entries[0].Node)
	s.ApplySideBySide(entries)

	assert.Equal(t, 1, s.Doc().Find("."+types.BadgeClass).Length())
	assert.Equal(t, 1, s.BadgeCount())
}

func TestDeactivate_StripsAllMetadata(t *testing.T) {
	s, entries := newSession(t)

	// Simulate scanner and controller metadata
	for i, e := range entries {
		dom.SetAttr(e.Node, types.AttrDetected, types.DetectedFlag)
		dom.SetAttr(e.Node, types.AttrPrice, "1")
		dom.SetAttr(e.Node, types.AttrIndex, string(rune('0'+i)))
		dom.SetAttr(e.Node, types.AttrHours, "1")
		dom.SetAttr(e.Node, types.AttrHoursLabel, "1h")
	}
	s.ApplySideBySide(entries)

	s.Deactivate()

	html, err := s.Doc().Html()
	require.NoError(t, err)
	assert.NotContains(t, html, "data-worktime-")
	assert.NotContains(t, html, types.BadgeClass)
}
