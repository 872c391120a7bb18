package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// StyleDecl is one property of an inline style attribute. Declarations
// keep their original order so a rewritten attribute round-trips cleanly.
type StyleDecl struct {
	Prop  string
	Value string
}

// ParseStyle splits an inline style attribute into declarations.
func ParseStyle(style string) []StyleDecl {
	var decls []StyleDecl
	for _, part := range strings.Split(style, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.Index(part, ":")
		if idx < 0 {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(part[:idx]))
		val := strings.TrimSpace(part[idx+1:])
		if prop == "" || val == "" {
			continue
		}
		decls = append(decls, StyleDecl{Prop: prop, Value: val})
	}
	return decls
}

// renderStyle joins declarations back into attribute form.
func renderStyle(decls []StyleDecl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Prop+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// StyleProp returns the value of one inline style property, or "".
func StyleProp(n *html.Node, prop string) string {
	for _, d := range ParseStyle(Attr(n, "style")) {
		if d.Prop == prop {
			return d.Value
		}
	}
	return ""
}

// SetStyleProps sets the given properties on the node's inline style,
// replacing existing values and preserving unrelated declarations.
func SetStyleProps(n *html.Node, decls []StyleDecl) {
	existing := ParseStyle(Attr(n, "style"))
	for _, d := range decls {
		found := false
		for i := range existing {
			if existing[i].Prop == d.Prop {
				existing[i].Value = d.Value
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, d)
		}
	}
	SetAttr(n, "style", renderStyle(existing))
}

// RemoveStyleProps deletes the named properties from the inline style.
// An empty resulting style removes the attribute entirely.
func RemoveStyleProps(n *html.Node, props ...string) {
	existing := ParseStyle(Attr(n, "style"))
	var kept []StyleDecl
	for _, d := range existing {
		drop := false
		for _, p := range props {
			if d.Prop == p {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", renderStyle(kept))
}
