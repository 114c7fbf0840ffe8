package mjjbox

import (
	"net/http/cookiejar"
	"net/url"
	"time"

	"mjjbox-checkin/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/mjjbox")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// FieldHints are the name-substring conventions used to recognize login
// fields on unknown markup and to guess blind payloads.
type FieldHints struct {
	User []string
	Pass []string
}

// "passcode" only matters for blind payloads; for classification any
// name containing it already matches "pass".
var DefaultHints = FieldHints{
	User: []string{"user", "username", "email", "login", "account"},
	Pass: []string{"pass", "password", "passwd", "pwd", "passcode"},
}

// DefaultProfilePaths are probed, in order, for usage statistics after a
// successful check-in.
var DefaultProfilePaths = []string{
	"/user", "/user/profile", "/profile", "/member", "/my", "/home", "/dashboard",
}

// Client holds one cookie-carrying session against a check-in site.
// All network calls are sequential and blocking.
type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	username string
	password string

	hints        FieldHints
	markers      Markers
	profilePaths []string
	loginPath    string
	checkinPath  string
}

type ClientOptions struct {
	BaseUrl  string
	Username string
	Password string

	// the following are optional, zero values pick the defaults above
	UserAgent    string
	Timeout      time.Duration
	Hints        FieldHints
	Markers      Markers
	ProfilePaths []string
	LoginPath    string
	CheckinPath  string
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)
	client.SetHeader("referer", opts.BaseUrl)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 15
	}
	client.SetTimeout(timeout)

	telemetry.InstrumentResty(client, "scrapers/mjjbox/http")

	c := &Client{
		BaseUrl:      baseUrl,
		Http:         client,
		username:     opts.Username,
		password:     opts.Password,
		hints:        opts.Hints,
		markers:      opts.Markers,
		profilePaths: opts.ProfilePaths,
		loginPath:    opts.LoginPath,
		checkinPath:  opts.CheckinPath,
	}
	if len(c.hints.User) == 0 {
		c.hints.User = DefaultHints.User
	}
	if len(c.hints.Pass) == 0 {
		c.hints.Pass = DefaultHints.Pass
	}
	if len(c.markers.Login) == 0 {
		c.markers.Login = DefaultMarkers.Login
	}
	if len(c.markers.Checkin) == 0 {
		c.markers.Checkin = DefaultMarkers.Checkin
	}
	if c.profilePaths == nil {
		c.profilePaths = DefaultProfilePaths
	}
	if c.loginPath == "" {
		c.loginPath = "/login"
	}
	if c.checkinPath == "" {
		c.checkinPath = "/checkin"
	}
	return c, nil
}

// resolve joins a possibly-relative form action against a page url.
func (c *Client) resolve(page *url.URL, action string) string {
	if action == "" {
		return page.String()
	}
	target, err := url.Parse(action)
	if err != nil {
		return page.String()
	}
	return page.ResolveReference(target).String()
}

func (c *Client) loginUrl() *url.URL {
	return c.BaseUrl.ResolveReference(&url.URL{Path: c.loginPath})
}

func (c *Client) checkinUrl() *url.URL {
	return c.BaseUrl.ResolveReference(&url.URL{Path: c.checkinPath})
}
