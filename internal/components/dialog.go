package components

import (
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// DialogProps is the server-side state the waitlist dialog is rendered from.
type DialogProps struct {
	SessionID string
	State     string
	Open      bool
	Submitted bool
	Name      string
	Email     string
	ResetInMS int64
	// APIBase is the origin the dialog script calls. Empty means same-origin.
	APIBase string
}

// WaitlistDialog renders the single dialog shared by every trigger. The form
// and the thank-you message are both present; the one that does not match the
// state is hidden.
func WaitlistDialog(props DialogProps) g.Node {
	return Div(
		ID(dialogID),
		Class("dialog-root"),
		g.Attr("data-session-id", props.SessionID),
		g.If(props.APIBase != "", g.Attr("data-api-base", strings.TrimRight(props.APIBase, "/"))),
		g.Attr("data-state", props.State),
		g.If(props.ResetInMS > 0, g.Attr("data-reset-in-ms", strconv.FormatInt(props.ResetInMS, 10))),
		g.If(!props.Open, g.Attr("hidden")),

		Div(Class("dialog-backdrop"), g.Attr("data-waitlist-dismiss", "backdrop")),

		Div(
			Class("dialog-content"),
			Role("dialog"),
			Aria("modal", "true"),
			Aria("labelledby", dialogID+"-title"),
			Aria("describedby", dialogID+"-description"),

			Button(
				Type("button"),
				Class("dialog-close"),
				g.Attr("data-waitlist-dismiss", "close"),
				Aria("label", "Close"),
				Icon("x", "icon-sm"),
			),

			Div(
				Class("dialog-header"),
				H2(ID(dialogID+"-title"), g.Text("Join the Waitlist")),
				P(
					ID(dialogID+"-description"),
					Class("muted"),
					g.Text("Be the first to know when we launch. Enter your details below."),
				),
			),

			waitlistForm(props),

			Div(
				Class("dialog-thanks"),
				g.Attr("data-waitlist-thanks"),
				g.If(!props.Submitted, g.Attr("hidden")),
				P(Class("muted"), g.Text("Thanks for joining! We'll notify you when we launch. 🎉")),
			),
		),
	)
}

func waitlistForm(props DialogProps) g.Node {
	return Form(
		ID("waitlist-form"),
		Class("form"),
		Method("post"),
		Action("#"),
		g.If(props.Submitted, g.Attr("hidden")),

		Div(
			Class("field"),
			Label(For("name"), g.Text("Name")),
			Input(
				ID("name"),
				Name("name"),
				Type("text"),
				Placeholder("Enter your name"),
				AutoComplete("name"),
				Value(props.Name),
				Required(),
			),
		),

		Div(
			Class("field"),
			Label(For("email"), g.Text("Email")),
			Input(
				ID("email"),
				Name("email"),
				Type("email"),
				Placeholder("Enter your email"),
				AutoComplete("email"),
				Value(props.Email),
				Required(),
			),
		),

		P(Class("form-error"), Role("alert"), g.Attr("hidden")),

		Button(Type("submit"), Class("btn btn-primary btn-block"), g.Text("Join Waitlist")),
	)
}
