package mjjbox

import (
	"context"
	"fmt"
	"log/slog"

	"mjjbox-checkin/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// CheckinResult is the per-attempt outcome of the check-in step. Stats
// is zero on failure.
type CheckinResult struct {
	Succeeded bool
	Message   string
	Stats     Stats
}

func failure(message string) CheckinResult {
	return CheckinResult{Succeeded: false, Message: message}
}

// CheckinOnce runs the three escalating check-in strategies, stopping
// at the first success:
//
//  1. GET the check-in endpoint: some sites perform the check-in as a
//     side effect of viewing the page.
//  2. submit the page's form verbatim, if it has a submission target.
//  3. bare POST to the check-in endpoint.
//
// Transport errors become failure results with a descriptive message,
// never a raised error.
func (c *Client) CheckinOnce(ctx context.Context) CheckinResult {
	ctx, span := tracer.Start(ctx, "client:CheckinOnce")
	defer span.End()

	checkinUrl := c.checkinUrl()
	res, err := c.Http.R().
		SetContext(ctx).
		Get(checkinUrl.String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch checkin page")
		return failure(fmt.Sprintf("GET %s 失败: %v", checkinUrl, err))
	}

	// strategy 1: the GET itself already was the check-in
	if res.StatusCode() == 200 && hasMarker(string(res.Body()), c.markers.Checkin) {
		slog.DebugContext(ctx, "checkin succeeded via GET")
		return c.successResult(ctx, res.Body(), "签到成功（从 GET 返回判断）")
	}

	// strategy 2: the page carries a form with a submission target
	doc, err := parseBody(res.Body())
	if err == nil {
		if result, attempted := c.submitCheckinForm(ctx, doc); attempted && result.Succeeded {
			return result
		}
	}

	// strategy 3: bare POST against the endpoint
	post, err := c.Http.R().
		SetContext(ctx).
		Post(checkinUrl.String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to post checkin")
		return failure(fmt.Sprintf("POST %s 失败: %v", checkinUrl, err))
	}
	if hasMarker(string(post.Body()), c.markers.Checkin) {
		slog.DebugContext(ctx, "checkin succeeded via bare POST")
		return c.successResult(ctx, post.Body(), "签到成功（POST）")
	}

	message := humanMessage(post.Body())
	if message == "" {
		message = fmt.Sprintf("签到返回 HTTP %d", post.StatusCode())
	}
	span.SetStatus(codes.Error, "no success marker found")
	return failure(message)
}

// submitCheckinForm implements strategy 2. The second return reports
// whether a form POST actually happened; a page without a targeted form
// is not an attempt.
func (c *Client) submitCheckinForm(ctx context.Context, doc *goquery.Document) (CheckinResult, bool) {
	form := doc.Find("form").First()
	if form.Length() == 0 {
		return CheckinResult{}, false
	}
	action := form.AttrOr("action", "")
	if action == "" {
		return CheckinResult{}, false
	}

	ctx, span := tracer.Start(ctx, "client:submitCheckinForm")
	defer span.End()

	// values go back verbatim, no credential substitution at this stage
	payload := map[string]string{}
	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		typ := fieldType(input)
		if typ == "submit" || typ == "button" {
			return
		}
		payload[name] = input.AttrOr("value", "")
	})

	postUrl := c.resolve(c.checkinUrl(), action)
	slog.DebugContext(ctx, "submitting checkin form", "url", postUrl, "fields", len(payload))

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(payload).
		Post(postUrl)
	if err != nil {
		span.SetStatus(codes.Error, "failed to post checkin form")
		return failure(fmt.Sprintf("POST %s 失败: %v", postUrl, err)), true
	}
	if hasMarker(string(res.Body()), c.markers.Checkin) {
		return c.successResult(ctx, res.Body(), "签到成功（提交表单）"), true
	}

	message := humanMessage(res.Body())
	if message == "" {
		message = fmt.Sprintf("表单提交后未检测到成功关键词（HTTP %d）", res.StatusCode())
	}
	span.SetStatus(codes.Error, "no success marker found")
	return failure(message), true
}

// successResult mines the winning response for statistics, backfills
// missing fields from profile pages, and picks a human summary.
func (c *Client) successResult(ctx context.Context, body []byte, fallbackMessage string) CheckinResult {
	var direct Stats
	message := fallbackMessage
	doc, err := parseBody(body)
	if err == nil {
		direct = MineStats(htmlutil.VisibleText(doc))
		if extracted := ExtractHumanMessage(doc); extracted != "" {
			message = extracted
		}
	}

	merged := MergeStats(direct, c.fetchProfileStats(ctx))
	return CheckinResult{
		Succeeded: true,
		Message:   message,
		Stats:     merged,
	}
}

// fetchProfileStats probes the candidate profile pages in order and
// returns the first partial result that contains anything at all.
func (c *Client) fetchProfileStats(ctx context.Context) Stats {
	ctx, span := tracer.Start(ctx, "client:fetchProfileStats")
	defer span.End()

	for _, path := range c.profilePaths {
		link := c.resolve(c.BaseUrl, path)
		res, err := c.Http.R().
			SetContext(ctx).
			Get(link)
		if err != nil || res.StatusCode() != 200 {
			continue
		}
		doc, err := parseBody(res.Body())
		if err != nil {
			continue
		}
		stats := MineStats(htmlutil.VisibleText(doc))
		if !stats.Empty() {
			slog.DebugContext(ctx, "profile page yielded stats", "url", link)
			return stats
		}
	}
	return Stats{}
}
