package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Trigger names match the values the waitlist API accepts for "trigger".
const (
	TriggerHeader = "header"
	TriggerHero   = "hero"
	TriggerCTA    = "cta"
)

const dialogID = "waitlist-dialog"

// icons holds lucide glyph bodies, drawn on a 24x24 stroked canvas.
var icons = map[string]string{
	"clock":       `<circle cx="12" cy="12" r="10"/><polyline points="12 6 12 12 16 14"/>`,
	"zap":         `<polygon points="13 2 3 14 12 14 11 22 21 10 12 10 13 2"/>`,
	"bell":        `<path d="M6 8a6 6 0 0 1 12 0c0 7 3 9 3 9H3s3-2 3-9"/><path d="M10.3 21a1.94 1.94 0 0 0 3.4 0"/>`,
	"bar-chart-3": `<path d="M3 3v18h18"/><path d="M18 17V9"/><path d="M13 17V5"/><path d="M8 17v-3"/>`,
	"trending-up": `<polyline points="22 7 13.5 15.5 8.5 10.5 2 17"/><polyline points="16 7 22 7 22 13"/>`,
	"calendar":    `<rect width="18" height="18" x="3" y="4" rx="2" ry="2"/><line x1="16" x2="16" y1="2" y2="6"/><line x1="8" x2="8" y1="2" y2="6"/><line x1="3" x2="21" y1="10" y2="10"/>`,
	"x":           `<path d="M18 6 6 18"/><path d="m6 6 12 12"/>`,
}

// Icon renders a decorative inline SVG. Unknown names render nothing.
func Icon(name, class string) g.Node {
	body, ok := icons[name]
	if !ok {
		return nil
	}

	return g.El("svg",
		Class("icon "+class),
		g.Attr("xmlns", "http://www.w3.org/2000/svg"),
		g.Attr("viewBox", "0 0 24 24"),
		g.Attr("fill", "none"),
		g.Attr("stroke", "currentColor"),
		g.Attr("stroke-width", "2"),
		g.Attr("stroke-linecap", "round"),
		g.Attr("stroke-linejoin", "round"),
		g.Attr("aria-hidden", "true"),
		g.Raw(body),
	)
}

func Logo(siteName string) g.Node {
	return Div(
		Class("logo"),
		Icon("clock", "icon-md"),
		Span(Class("logo-text"), g.Text(siteName)),
	)
}

// TriggerButton opens the shared waitlist dialog. Every trigger on the page
// targets the same dialog element.
func TriggerButton(trigger, label, variant string) g.Node {
	return Button(
		Type("button"),
		Class("btn btn-"+variant),
		g.Attr("data-waitlist-trigger", trigger),
		g.Attr("aria-haspopup", "dialog"),
		g.Attr("aria-controls", dialogID),
		g.Text(label),
	)
}

func PageSection(class string, children ...g.Node) g.Node {
	return Section(
		Class("section "+class),
		g.Group(children),
	)
}

func SectionHeading(title, subtitle string) g.Node {
	return Div(
		Class("section-heading"),
		H2(g.Text(title)),
		P(Class("muted"), g.Text(subtitle)),
	)
}
