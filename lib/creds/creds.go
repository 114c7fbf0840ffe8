package creds

import (
	"fmt"
	"os"
	"strings"
)

const DefaultBaseUrl = "https://mjjbox.com"

// Credentials for a single run. Immutable once loaded.
type Credentials struct {
	Username   string
	Password   string
	BaseUrl    string
	ServerChan string
}

var reservedKeys = map[string]bool{
	"password":   true,
	"passwd":     true,
	"pass":       true,
	"serverchan": true,
	"base":       true,
}

// Load reads a line-based `key=value` credentials file. Blank lines and
// `#` comments are skipped. The username falls back through
// username -> email -> the first key that is not a password/notify/base
// key, so files written as `myname@example.com=...` style still work.
func Load(path string) (Credentials, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials file not found: %w", err)
	}

	var keys []string
	values := map[string]string{}
	for _, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		values[key] = strings.TrimSpace(value)
		keys = append(keys, key)
	}
	if len(values) == 0 {
		return Credentials{}, fmt.Errorf("credentials file is empty: %s", path)
	}

	out := Credentials{
		BaseUrl:    DefaultBaseUrl,
		ServerChan: values["serverchan"],
	}
	if base := values["base"]; base != "" {
		out.BaseUrl = base
	}

	out.Username = values["username"]
	if out.Username == "" {
		out.Username = values["email"]
	}
	if out.Username == "" {
		for _, key := range keys {
			if !reservedKeys[strings.ToLower(key)] {
				out.Username = values[key]
				break
			}
		}
	}

	for _, key := range []string{"password", "passwd", "pass"} {
		if values[key] != "" {
			out.Password = values[key]
			break
		}
	}

	if out.Username == "" || out.Password == "" {
		return Credentials{}, fmt.Errorf("credentials must contain username (or email) and password")
	}
	return out, nil
}
