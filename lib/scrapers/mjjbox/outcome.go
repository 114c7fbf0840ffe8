package mjjbox

import (
	"strings"
	"unicode/utf8"

	"mjjbox-checkin/lib/htmlutil"
	"mjjbox-checkin/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Markers are the keyword sets whose presence in a response body counts
// as a positive outcome. Absence of a marker is failure, never an
// error; transport problems are signaled separately.
type Markers struct {
	Login   []string
	Checkin []string
}

var DefaultMarkers = Markers{
	Login:   []string{"logout", "sign out", "登出", "退出", "个人资料", "profile"},
	Checkin: []string{"签到成功", "已签到", "success", "already"},
}

// Verdict is the outcome of one HTTP exchange. Message is advisory
// only: it explains the outcome to a human and never decides it.
type Verdict struct {
	Succeeded bool
	Message   string
}

var messageKeywords = []string{"签到", "成功", "已签到", "失败", "请登录", "success", "already"}

// ExtractHumanMessage scans block and inline text fragments in document
// order and returns the first one of plausible length that mentions an
// outcome keyword, falling back to the first plausible fragment, then
// the empty string.
func ExtractHumanMessage(doc *goquery.Document) string {
	var candidates []string
	for _, fragment := range htmlutil.Fragments(doc, "p, div, span, strong, li") {
		length := utf8.RuneCountInString(fragment)
		if length <= 2 || length >= 400 {
			continue
		}
		candidates = append(candidates, fragment)
	}
	for _, fragment := range candidates {
		if textutil.ContainsAnyFold(fragment, messageKeywords) {
			return fragment
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func hasMarker(body string, markers []string) bool {
	return textutil.ContainsAnyFold(body, markers)
}

func parseBody(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

// humanMessage is ExtractHumanMessage over raw bytes, tolerating
// malformed markup by returning "".
func humanMessage(body []byte) string {
	doc, err := parseBody(body)
	if err != nil {
		return ""
	}
	return ExtractHumanMessage(doc)
}
