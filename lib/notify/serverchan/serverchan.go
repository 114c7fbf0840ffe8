package serverchan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mjjbox-checkin/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// Client pushes notifications through ServerChan. Both the classic
// (sc.ftqq.com) and Turbo (sct.ftqq.com, key prefixed "SCT") endpoints
// are supported; the key decides which one is used.
type Client struct {
	key  string
	http *resty.Client
}

func NewClient(key string) Client {
	client := resty.New()
	client.SetTimeout(time.Second * 10)
	telemetry.InstrumentResty(client, "notify/serverchan")

	return Client{
		key:  strings.TrimSpace(key),
		http: client,
	}
}

func (c Client) Send(ctx context.Context, title, body string) error {
	if c.key == "" {
		return fmt.Errorf("serverchan key is empty")
	}

	var link string
	form := map[string]string{"desp": body}
	if strings.HasPrefix(strings.ToUpper(c.key), "SCT") {
		link = fmt.Sprintf("https://sct.ftqq.com/%s.send", c.key)
		form["title"] = title
	} else {
		link = fmt.Sprintf("https://sc.ftqq.com/%s.send", c.key)
		form["text"] = title
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(link)
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("serverchan returned HTTP %d", res.StatusCode())
	}
	return nil
}
