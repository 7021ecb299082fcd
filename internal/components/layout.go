package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type PageConfig struct {
	SiteName    string
	Title       string
	Description string
	Year        int
	// AssetPrefix is prepended to /static paths. Empty for the server; the
	// CLI uses it for pages written next to a copied asset tree.
	AssetPrefix string
}

func (c PageConfig) withDefaults() PageConfig {
	if c.SiteName == "" {
		c.SiteName = "LogFox"
	}

	if c.Title == "" {
		c.Title = c.SiteName + " - Track Your Day. Improve Your Life."
	}

	if c.Description == "" {
		c.Description = "Simple, consistent, reminder tool for tracking your day."
	}

	return c
}

func (c PageConfig) asset(path string) string {
	return c.AssetPrefix + "/static/" + path
}

func Layout(config PageConfig, content ...g.Node) g.Node {
	config = config.withDefaults()

	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(config.Title)),
				Meta(Name("description"), Content(config.Description)),

				Meta(g.Attr("property", "og:title"), Content(config.Title)),
				Meta(g.Attr("property", "og:description"), Content(config.Description)),
				Meta(g.Attr("property", "og:type"), Content("website")),

				Link(Rel("stylesheet"), Href(config.asset("styles.css"))),
			),
			Body(
				Class("page"),
				g.Group(content),

				Script(Src(config.asset("js/waitlist.js")), Defer()),
			),
		),
	})
}
