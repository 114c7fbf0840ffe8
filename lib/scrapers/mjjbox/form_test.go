package mjjbox

import (
	"bytes"
	"testing"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

//go:embed login_page_test.html
var loginPageTest []byte

func parseDoc(t *testing.T, markup []byte) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestClassifyLoginForm(t *testing.T) {
	doc := parseDoc(t, loginPageTest)

	form, ok := ClassifyLoginForm(doc, DefaultHints)
	require.True(t, ok)
	require.Equal(t, "/session/create", form.Action)
	require.Equal(t, "login_password", form.PasswordField)
	require.Equal(t, "login_account", form.UsernameField)
	require.Equal(t, map[string]string{
		"csrf":      "abc123",
		"return_to": "/",
	}, form.Hidden)
}

func TestClassifyPasswordHintedTextInput(t *testing.T) {
	doc := parseDoc(t, []byte(`
		<form action="/login">
			<input type="text" name="account" />
			<input type="text" name="user_passwd" />
		</form>
	`))

	form, ok := ClassifyLoginForm(doc, DefaultHints)
	require.True(t, ok)
	require.Equal(t, "user_passwd", form.PasswordField)
	require.Equal(t, "account", form.UsernameField)
}

func TestClassifyFirstPasswordWins(t *testing.T) {
	doc := parseDoc(t, []byte(`
		<form>
			<input type="password" name="pw1" />
			<input type="password" name="pw2" />
		</form>
	`))

	form, ok := ClassifyLoginForm(doc, DefaultHints)
	require.True(t, ok)
	require.Equal(t, "pw1", form.PasswordField)
}

func TestClassifySkipsFormsWithoutPassword(t *testing.T) {
	doc := parseDoc(t, []byte(`
		<form action="/first"><input type="text" name="q" /></form>
		<form action="/second"><input type="password" name="pwd" /></form>
	`))

	form, ok := ClassifyLoginForm(doc, DefaultHints)
	require.True(t, ok)
	require.Equal(t, "/second", form.Action)
	require.Equal(t, "pwd", form.PasswordField)
	require.Equal(t, "", form.UsernameField)
}

func TestClassifyNoQualifyingForm(t *testing.T) {
	doc := parseDoc(t, []byte(`
		<form><input type="text" name="q" /></form>
		<p>no login here</p>
	`))

	_, ok := ClassifyLoginForm(doc, DefaultHints)
	require.False(t, ok)
}

func TestClassifyNamelessInputsSkipped(t *testing.T) {
	doc := parseDoc(t, []byte(`
		<form>
			<input type="text" />
			<input type="password" name="pwd" />
			<input type="email" name="mail" />
		</form>
	`))

	form, ok := ClassifyLoginForm(doc, DefaultHints)
	require.True(t, ok)
	require.Equal(t, "pwd", form.PasswordField)
	require.Equal(t, "mail", form.UsernameField)
}
