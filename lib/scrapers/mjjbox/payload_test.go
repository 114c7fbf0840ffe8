package mjjbox

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuildFormPayload(t *testing.T) {
	doc := parseDoc(t, loginPageTest)
	form, ok := ClassifyLoginForm(doc, DefaultHints)
	require.True(t, ok)

	payload := BuildFormPayload(form, "alice", "hunter2")
	diff := cmp.Diff(map[string]string{
		"csrf":           "abc123",
		"return_to":      "/",
		"login_account":  "alice",
		"login_password": "hunter2",
		"remember":       "1",
	}, payload)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestBuildFormPayloadBackfillsHidden(t *testing.T) {
	// hidden fields captured separately must survive even if the field
	// pass missed them
	form := &ClassifiedForm{
		PasswordField: "pwd",
		Fields: []FormField{
			{Name: "pwd", Type: "password"},
		},
		Hidden: map[string]string{"token": "xyz"},
	}

	payload := BuildFormPayload(form, "alice", "hunter2")
	require.Equal(t, map[string]string{
		"pwd":   "hunter2",
		"token": "xyz",
	}, payload)
}

func TestBlindPayloadsDeterministicOrder(t *testing.T) {
	combos := BlindPayloads(DefaultHints, "alice", "hunter2")
	require.Len(t, combos, 25)

	// user hints drive the outer loop
	expectedFirst := map[string]string{"user": "alice", "pass": "hunter2"}
	expectedLast := map[string]string{"account": "alice", "passcode": "hunter2"}
	require.Equal(t, expectedFirst, combos[0])
	require.Equal(t, expectedLast, combos[24])

	i := 0
	for _, u := range DefaultHints.User {
		for _, p := range DefaultHints.Pass {
			require.Equal(t, map[string]string{u: "alice", p: "hunter2"}, combos[i], fmt.Sprintf("combo %d", i))
			i++
		}
	}
}
