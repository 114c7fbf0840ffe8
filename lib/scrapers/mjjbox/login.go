package mjjbox

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// TryLogin performs a best-effort login: classify the login page's
// form, submit it, and fall back to blind hint-pair payloads when the
// form is missing or rejected. A false return is never fatal to the
// run; some sites accept check-ins from unauthenticated or
// cookie-bearing visitors.
func (c *Client) TryLogin(ctx context.Context) bool {
	ctx, span := tracer.Start(ctx, "client:TryLogin")
	defer span.End()

	loginUrl := c.loginUrl()
	res, err := c.Http.R().
		SetContext(ctx).
		Get(loginUrl.String())
	if err != nil {
		slog.DebugContext(ctx, "failed to fetch login page", "url", loginUrl.String(), "err", err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return false
	}

	doc, err := parseBody(res.Body())
	if err == nil {
		form, ok := ClassifyLoginForm(doc, c.hints)
		if ok && c.submitLoginForm(ctx, form) {
			return true
		}
	}

	for i, combo := range BlindPayloads(c.hints, c.username, c.password) {
		slog.DebugContext(ctx, "trying blind login payload", "index", i)
		res, err := c.Http.R().
			SetContext(ctx).
			SetFormData(combo).
			Post(loginUrl.String())
		if err != nil {
			continue
		}
		if c.loginConfirmed(ctx, res.Body()) {
			return true
		}
	}

	span.SetStatus(codes.Error, "login not confirmed")
	return false
}

func (c *Client) submitLoginForm(ctx context.Context, form *ClassifiedForm) bool {
	ctx, span := tracer.Start(ctx, "client:submitLoginForm")
	defer span.End()

	loginUrl := c.loginUrl()
	postUrl := c.resolve(loginUrl, form.Action)
	payload := BuildFormPayload(form, c.username, c.password)

	slog.DebugContext(
		ctx, "submitting login form",
		"url", postUrl,
		"fields", len(payload),
		"username_field", form.UsernameField,
		"password_field", form.PasswordField,
	)

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(payload).
		Post(postUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to post login form")
		return false
	}
	return c.loginConfirmed(ctx, res.Body())
}

// loginConfirmed applies the login marker test to a response body, and
// when that is inconclusive, to one confirmatory GET of the site root.
// Sites that redirect to a dashboard rather than rendering the marker
// in the POST response are caught by the follow-up.
func (c *Client) loginConfirmed(ctx context.Context, body []byte) bool {
	if hasMarker(string(body), c.markers.Login) {
		return true
	}
	home, err := c.Http.R().
		SetContext(ctx).
		Get(c.BaseUrl.String())
	if err != nil {
		return false
	}
	return hasMarker(string(home.Body()), c.markers.Login)
}
