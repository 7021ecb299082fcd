package components

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type Feature struct {
	Icon        string
	Title       string
	Description string
}

type HowItWorksStep struct {
	Title       string
	Description string
}

func SiteHeader(siteName string) g.Node {
	return Header(
		Class("site-header"),
		Div(
			Class("container header-row"),
			Logo(siteName),
			TriggerButton(TriggerHeader, "Join Waitlist", "outline"),
		),
	)
}

func Hero() g.Node {
	return PageSection("hero",
		Div(
			Class("hero-inner"),
			Div(
				Class("badge"),
				Icon("zap", "icon-sm"),
				Span(g.Text("We are in the game of life 🏃‍♂️")),
			),
			H1(
				g.Text("Track Your Day."),
				Br(),
				g.Text("Improve Your Life."),
			),
			P(
				Class("lead muted"),
				g.Text("Simple, consistent, reminder tool for tracking your day."),
			),
			Div(
				Class("hero-actions"),
				TriggerButton(TriggerHero, "Get Early Access", "primary btn-lg"),
			),
		),
	)
}

func Features() g.Node {
	features := []Feature{
		{"bell", "Smart Reminders", "Get gentle reminders every 30 minutes or hourly to log what you're working on. Stay mindful of how you spend your time."},
		{"bar-chart-3", "Daily Reports", "At the end of each day, receive a comprehensive report showing exactly where your time went."},
		{"trending-up", "Long-term Growth", "Identify patterns, eliminate time-wasters, and make conscious decisions to improve your productivity over time."},
	}

	return PageSection("features",
		SectionHeading("Track. Review. Improve.", "A simple system designed to help you understand where your time goes"),
		Div(
			Class("grid-3"),
			g.Group(g.Map(features, func(f Feature) g.Node {
				return Div(
					Class("card"),
					Div(Class("card-icon"), Icon(f.Icon, "icon-md")),
					H3(g.Text(f.Title)),
					P(Class("muted"), g.Text(f.Description)),
				)
			})),
		),
	)
}

func HowItWorks() g.Node {
	steps := []HowItWorksStep{
		{"Set Your Reminders", "Choose your preferred reminder frequency."},
		{"Log Your Activities", "When reminded, take 10 seconds to note what you're currently working on."},
		{"Review & Improve", "At day's end, review your report and plan how to optimize tomorrow."},
	}

	items := make([]g.Node, 0, len(steps))
	for i, step := range steps {
		items = append(items, Div(
			Class("step"),
			Div(Class("step-number"), g.Text(strconv.Itoa(i+1))),
			H3(g.Text(step.Title)),
			P(Class("muted"), g.Text(step.Description)),
		))
	}

	return PageSection("how-it-works",
		SectionHeading("How It Works", "Three simple steps to transform your productivity"),
		Div(Class("grid-3 steps"), g.Group(items)),
	)
}

func CTA() g.Node {
	return PageSection("cta",
		Div(
			Class("cta-panel"),
			Icon("calendar", "icon-lg"),
			H2(g.Text("Each Day Counts for Something")),
			P(
				Class("lead"),
				g.Text("Join our waitlist and be notified when we launch. Start winning at the game of life."),
			),
			TriggerButton(TriggerCTA, "Join the Waitlist", "secondary btn-lg"),
		),
	)
}

func SiteFooter(siteName string, year int) g.Node {
	return Footer(
		Class("site-footer"),
		Div(
			Class("container"),
			P(g.Textf("© %d %s. Built for those who want to win at the game of life.", year, siteName)),
		),
	)
}
