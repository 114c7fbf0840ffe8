package mjjbox

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"mjjbox-checkin/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseUrl string) *Client {
	cleanup := telemetry.SetupForTesting(t, "test:mjjbox")
	t.Cleanup(cleanup)

	client, err := NewClient(ClientOptions{
		BaseUrl:  baseUrl,
		Username: "alice",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

const successPage = `<html><body>
<p>签到成功，已签到 10 次，连续签到 3 天，总积分 120，本次获得 5 分</p>
</body></html>`

func TestCheckinSucceedsOnGet(t *testing.T) {
	var posts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
		}
		switch r.URL.Path {
		case "/checkin":
			fmt.Fprint(w, successPage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result := client.CheckinOnce(context.Background())

	require.True(t, result.Succeeded)
	require.Equal(t, "签到成功，已签到 10 次，连续签到 3 天，总积分 120，本次获得 5 分", result.Message)
	require.Equal(t, 10, *result.Stats.TotalCheckins)
	require.Equal(t, 3, *result.Stats.Consecutive)
	require.Equal(t, 120, *result.Stats.TotalPoints)
	require.Equal(t, 5, *result.Stats.Gained)
	// a marker in the GET response terminates the dispatch, nothing is
	// ever posted
	require.EqualValues(t, 0, posts.Load())
}

func TestCheckinSubmitsDiscoveredForm(t *testing.T) {
	var formPayload map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/checkin" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body>
				<form action="/checkin/do" method="post">
					<input type="hidden" name="token" value="t0k3n" />
					<input type="submit" value="签到" />
				</form>
			</body></html>`)
		case r.URL.Path == "/checkin/do" && r.Method == http.MethodPost:
			r.ParseForm()
			formPayload = r.PostForm
			fmt.Fprint(w, successPage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result := client.CheckinOnce(context.Background())

	require.True(t, result.Succeeded)
	require.Equal(t, []string{"t0k3n"}, formPayload["token"])
	// the submit trigger is not form data
	require.NotContains(t, formPayload, "commit")
}

func TestCheckinFallsBackToBarePost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/checkin" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body><p>点击按钮签到</p></body></html>`)
		case r.URL.Path == "/checkin" && r.Method == http.MethodPost:
			fmt.Fprint(w, successPage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result := client.CheckinOnce(context.Background())
	require.True(t, result.Succeeded)
}

func TestCheckinBarePostRunsAfterFailedFormPost(t *testing.T) {
	var barePosts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/checkin" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body>
				<form action="/checkin/do"><input type="hidden" name="t" value="1" /></form>
			</body></html>`)
		case r.URL.Path == "/checkin/do":
			fmt.Fprint(w, `<html><body><p>操作失败</p></body></html>`)
		case r.URL.Path == "/checkin" && r.Method == http.MethodPost:
			barePosts.Add(1)
			fmt.Fprint(w, successPage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result := client.CheckinOnce(context.Background())

	require.True(t, result.Succeeded)
	require.EqualValues(t, 1, barePosts.Load())
}

func TestCheckinFailureCollectsReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>请登录后再签到</p></body></html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result := client.CheckinOnce(context.Background())

	require.False(t, result.Succeeded)
	require.Equal(t, "请登录后再签到", result.Message)
	require.True(t, result.Stats.Empty())
}

func TestCheckinTransportErrorIsFailureVerdict(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	link := server.URL
	server.Close()

	client := newTestClient(t, link)
	result := client.CheckinOnce(context.Background())

	require.False(t, result.Succeeded)
	require.Contains(t, result.Message, "失败")
	require.True(t, result.Stats.Empty())
}

func TestCheckinMergesProfileStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/checkin":
			fmt.Fprint(w, `<html><body><p>签到成功，本次获得 5 分</p></body></html>`)
		case "/user":
			fmt.Fprint(w, `<html><body>
				<p>已签到 10 次</p>
				<p>总积分 999</p>
				<p>本次获得 1 分</p>
			</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result := client.CheckinOnce(context.Background())

	require.True(t, result.Succeeded)
	// direct response beats the profile page for overlapping keys
	require.Equal(t, 5, *result.Stats.Gained)
	require.Equal(t, 10, *result.Stats.TotalCheckins)
	require.Equal(t, 999, *result.Stats.TotalPoints)
}

func TestTryLoginWithClassifiedForm(t *testing.T) {
	var loginPayload map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/login" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body>
				<form action="/session" method="post">
					<input type="hidden" name="csrf" value="abc" />
					<input type="text" name="username" />
					<input type="password" name="password" />
				</form>
			</body></html>`)
		case r.URL.Path == "/session" && r.Method == http.MethodPost:
			r.ParseForm()
			loginPayload = r.PostForm
			fmt.Fprint(w, `<html><body><a href="/logout">Logout</a></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.True(t, client.TryLogin(context.Background()))
	require.Equal(t, []string{"alice"}, loginPayload["username"])
	require.Equal(t, []string{"hunter2"}, loginPayload["password"])
	require.Equal(t, []string{"abc"}, loginPayload["csrf"])
}

func TestTryLoginBlindFallback(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/login" && r.Method == http.MethodGet:
			fmt.Fprint(w, `<html><body><p>js-only login page</p></body></html>`)
		case r.URL.Path == "/login" && r.Method == http.MethodPost:
			attempts.Add(1)
			r.ParseForm()
			if r.PostForm.Get("email") == "alice" && r.PostForm.Get("passwd") == "hunter2" {
				fmt.Fprint(w, `<html><body>个人资料</body></html>`)
				return
			}
			fmt.Fprint(w, `<html><body>bad guess</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.True(t, client.TryLogin(context.Background()))
	// email is the 3rd user hint, passwd the 3rd pass hint: combo #13
	require.EqualValues(t, 13, attempts.Load())
}

func TestTryLoginFailureIsNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/checkin" {
			fmt.Fprint(w, successPage)
			return
		}
		fmt.Fprint(w, `<html><body><p>nothing to see</p></body></html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.False(t, client.TryLogin(context.Background()))

	// the check-in step still runs and succeeds without a session
	result := client.CheckinOnce(context.Background())
	require.True(t, result.Succeeded)
}
