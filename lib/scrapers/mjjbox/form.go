package mjjbox

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FormField is one named input of a form, in document order.
type FormField struct {
	Name  string
	Type  string
	Value string
}

// ClassifiedForm is the result of running the field heuristics over one
// HTML form. UsernameField may legitimately be empty; PasswordField
// never is for a form returned by ClassifyLoginForm.
type ClassifiedForm struct {
	Action        string
	UsernameField string
	PasswordField string
	Hidden        map[string]string
	Fields        []FormField
}

func fieldType(sel *goquery.Selection) string {
	typ := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
	if typ == "" {
		return "text"
	}
	return typ
}

func nameMatchesHint(name string, hints []string) bool {
	name = strings.ToLower(name)
	for _, h := range hints {
		if strings.Contains(name, h) {
			return true
		}
	}
	return false
}

func collectFields(form *goquery.Selection) []FormField {
	var fields []FormField
	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		fields = append(fields, FormField{
			Name:  name,
			Type:  fieldType(input),
			Value: input.AttrOr("value", ""),
		})
	})
	return fields
}

func classifyForm(form *goquery.Selection, hints FieldHints) *ClassifiedForm {
	fields := collectFields(form)

	out := &ClassifiedForm{
		Action: form.AttrOr("action", ""),
		Hidden: map[string]string{},
		Fields: fields,
	}

	// hidden inputs are always resubmitted, regardless of name
	for _, f := range fields {
		if f.Type == "hidden" {
			out.Hidden[f.Name] = f.Value
		}
	}

	// password first: exact type match, or a pass-hinted name on a
	// text-like input. earlier inputs take priority.
	for _, f := range fields {
		if f.Type == "password" {
			out.PasswordField = f.Name
			break
		}
		textLike := f.Type == "text" || f.Type == "email"
		if textLike && nameMatchesHint(f.Name, hints.Pass) {
			out.PasswordField = f.Name
			break
		}
	}
	if out.PasswordField == "" {
		return nil
	}

	// username: first text-like or user-hinted input that is not the
	// password field.
	for _, f := range fields {
		if f.Name == out.PasswordField || f.Type == "hidden" {
			continue
		}
		if f.Type == "text" || f.Type == "email" || nameMatchesHint(f.Name, hints.User) {
			out.UsernameField = f.Name
			break
		}
	}

	return out
}

// ClassifyLoginForm walks the document's forms in order and returns the
// first one containing a recognizable password field. There is no
// scoring across candidates; forms without a password field are
// skipped. Reports false when no form qualifies, in which case the
// caller falls back to blind payloads.
func ClassifyLoginForm(doc *goquery.Document, hints FieldHints) (*ClassifiedForm, bool) {
	var found *ClassifiedForm
	doc.Find("form").EachWithBreak(func(_ int, form *goquery.Selection) bool {
		classified := classifyForm(form, hints)
		if classified != nil {
			found = classified
			return false
		}
		return true
	})
	return found, found != nil
}
