// Package annotator writes detection results into the document: badge
// injection next to prices, in-place replacement of price text, and full
// reversion of both. State lives in a per-document Session so repeated
// passes stay idempotent.
package annotator

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"worktime-annotator/internal/dom"
	"worktime-annotator/internal/types"
)

// Entry is one annotated price: the target element plus its display
// strings, prepared by the caller from scan and conversion output.
type Entry struct {
	Node      *html.Node
	Price     float64
	Formatted string
	Tier      string
}

// Font-related inline style properties copied from a price element onto
// its badge so the badge reads like the surrounding text.
var fontProps = [7]string{
	"font-size", "font-family", "font-weight", "font-style",
	"line-height", "letter-spacing", "color",
}

// Tier background tints for badges.
var tierBackgrounds = map[string]string{
	"green":  "#e8f5e9",
	"yellow": "#fff8e1",
	"red":    "#ffebee",
}

// Style properties replace mode mutates; snapshots capture exactly these.
var replaceProps = [4]string{"background-color", "padding", "border-radius", "display"}

// snapshot holds what replace mode needs to restore an element.
type snapshot struct {
	innerHTML string
	text      string
	styles    [4]string // original values of replaceProps, "" = absent
	title     string
	hadTitle  bool
}

// Session is the per-document presentation state. An element is tracked
// in at most one of the two maps at a time; Reset always runs before a
// mode is applied, so the maps never mix modes.
type Session struct {
	doc      *goquery.Document
	root     *html.Node
	badges   map[*html.Node]*html.Node
	replaced map[*html.Node]*snapshot
	logger   types.Logger
}

// NewSession creates presentation state bound to one document. Tear it
// down with Deactivate on navigation or shutdown.
func NewSession(doc *goquery.Document, logger types.Logger) *Session {
	return &Session{
		doc:      doc,
		root:     doc.Get(0),
		badges:   make(map[*html.Node]*html.Node),
		replaced: make(map[*html.Node]*snapshot),
		logger:   logger,
	}
}

// Doc returns the session's document.
func (s *Session) Doc() *goquery.Document {
	return s.doc
}

// ApplySideBySide injects or refreshes one badge per entry. Existing
// badges are reused, never duplicated: the tracked map is checked first,
// then the element's next sibling, then a shared price-container
// ancestor.
func (s *Session) ApplySideBySide(entries []Entry) {
	for _, e := range entries {
		if !dom.Attached(e.Node, s.root) {
			delete(s.badges, e.Node)
			continue
		}
		if _, isReplaced := s.replaced[e.Node]; isReplaced {
			continue
		}

		if badge := s.findExistingBadge(e.Node); badge != nil {
			if dom.Text(badge) != e.Formatted {
				dom.SetText(badge, e.Formatted)
				s.styleBadge(badge, e)
			}
			s.badges[e.Node] = badge
			continue
		}

		badge := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
		}
		dom.SetAttr(badge, "class", types.BadgeClass)
		dom.SetText(badge, e.Formatted)
		s.styleBadge(badge, e)

		dom.InsertAfter(e.Node, badge)
		s.badges[e.Node] = badge
	}
}

// findExistingBadge locates a badge already attached for this element:
// tracked, immediate next sibling, or inside a price-container parent.
func (s *Session) findExistingBadge(n *html.Node) *html.Node {
	if badge, ok := s.badges[n]; ok {
		if dom.Attached(badge, s.root) {
			return badge
		}
		delete(s.badges, n)
	}

	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if hasClass(sib, types.BadgeClass) {
			return sib
		}
		break
	}

	if parent := n.Parent; parent != nil && parent.Type == html.ElementNode && hasPriceContainerClass(parent) {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasClass(c, types.BadgeClass) {
				return c
			}
		}
	}

	return nil
}

// styleBadge copies the price element's font styling onto the badge and
// tints it by tier. The copy keeps the badge visually in line with the
// text it annotates.
func (s *Session) styleBadge(badge *html.Node, e Entry) {
	var decls []dom.StyleDecl
	for _, prop := range fontProps {
		if v := dom.StyleProp(e.Node, prop); v != "" {
			decls = append(decls, dom.StyleDecl{Prop: prop, Value: v})
		}
	}
	decls = append(decls, dom.StyleDecl{Prop: "margin-left", Value: "4px"})
	if bg, ok := tierBackgrounds[e.Tier]; ok {
		decls = append(decls, dom.StyleDecl{Prop: "background-color", Value: bg})
	}
	dom.SetStyleProps(badge, decls)
}

// ApplyReplace overwrites each entry's visible text with the formatted
// hours. The original text, markup and mutated style properties are
// snapshotted once; the snapshot stands until Reset restores it.
func (s *Session) ApplyReplace(entries []Entry) {
	for _, e := range entries {
		if !dom.Attached(e.Node, s.root) {
			delete(s.replaced, e.Node)
			continue
		}
		if _, done := s.replaced[e.Node]; done {
			continue
		}
		if dom.Attr(e.Node, types.AttrReplaced) == "true" {
			continue
		}

		snap := &snapshot{
			innerHTML: dom.InnerHTML(e.Node),
			text:      dom.Text(e.Node),
			title:     dom.Attr(e.Node, "title"),
			hadTitle:  dom.HasAttr(e.Node, "title"),
		}
		for i, prop := range replaceProps {
			snap.styles[i] = dom.StyleProp(e.Node, prop)
		}

		dom.SetText(e.Node, e.Formatted)
		dom.SetStyleProps(e.Node, []dom.StyleDecl{
			{Prop: "background-color", Value: "#fff3cd"},
			{Prop: "padding", Value: "2px 6px"},
			{Prop: "border-radius", Value: "4px"},
			{Prop: "display", Value: "inline-block"},
		})
		dom.SetAttr(e.Node, types.AttrReplaced, "true")
		dom.SetAttr(e.Node, "title", fmt.Sprintf("Original price: %s (%s of work)", snap.text, e.Formatted))

		s.replaced[e.Node] = snap
	}
}

// Reset reverts all presentation: every badge-classed element in the
// document is removed (the map alone cannot be trusted after outside DOM
// edits), and every tracked replacement still attached is restored from
// its snapshot. Idempotent; always called before a mode is applied.
func (s *Session) Reset() {
	s.doc.Find("." + types.BadgeClass).Each(func(_ int, sel *goquery.Selection) {
		dom.Detach(sel.Get(0))
	})
	s.badges = make(map[*html.Node]*html.Node)

	for n, snap := range s.replaced {
		if dom.Attached(n, s.root) {
			s.restore(n, snap)
		}
	}
	s.replaced = make(map[*html.Node]*snapshot)
}

// restore undoes one replacement from its snapshot.
func (s *Session) restore(n *html.Node, snap *snapshot) {
	if err := dom.SetInnerHTML(n, snap.innerHTML); err != nil {
		// Markup that no longer parses degrades to the text snapshot.
		if s.logger != nil {
			s.logger.Warnf("Restoring original markup failed, falling back to text: %v", err)
		}
		dom.SetText(n, snap.text)
	}

	for i, prop := range replaceProps {
		if snap.styles[i] == "" {
			dom.RemoveStyleProps(n, prop)
		} else {
			dom.SetStyleProps(n, []dom.StyleDecl{{Prop: prop, Value: snap.styles[i]}})
		}
	}

	dom.RemoveAttr(n, types.AttrReplaced)
	if snap.hadTitle {
		dom.SetAttr(n, "title", snap.title)
	} else {
		dom.RemoveAttr(n, "title")
	}
}

// Deactivate reverts presentation and strips every detection and
// conversion attribute, returning the document to a pristine state.
func (s *Session) Deactivate() {
	s.Reset()

	s.doc.Find("[" + types.AttrDetected + "]").Each(func(_ int, sel *goquery.Selection) {
		n := sel.Get(0)
		dom.RemoveAttr(n, types.AttrDetected)
		dom.RemoveAttr(n, types.AttrPrice)
		dom.RemoveAttr(n, types.AttrIndex)
		dom.RemoveAttr(n, types.AttrHours)
		dom.RemoveAttr(n, types.AttrHoursLabel)
	})
}

// BadgeCount reports how many badges the session currently tracks.
func (s *Session) BadgeCount() int {
	return len(s.badges)
}

// ReplacedCount reports how many replacements the session currently
// tracks.
func (s *Session) ReplacedCount() int {
	return len(s.replaced)
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(dom.Attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func hasPriceContainerClass(n *html.Node) bool {
	for _, field := range strings.Fields(dom.Attr(n, "class")) {
		if field == "price" || field == "price-container" || field == "price-box" {
			return true
		}
	}
	return false
}
