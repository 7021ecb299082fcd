package components

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// LandingPage assembles the whole marketing page around one dialog session.
func LandingPage(config PageConfig, dialog DialogProps) g.Node {
	config = config.withDefaults()

	return Layout(
		config,
		Div(
			Class("app"),
			SiteHeader(config.SiteName),
			Main(
				Hero(),
				Features(),
				HowItWorks(),
				CTA(),
			),
			SiteFooter(config.SiteName, config.Year),
		),
		WaitlistDialog(dialog),
	)
}
