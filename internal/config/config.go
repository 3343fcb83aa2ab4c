// Package config loads the process configuration from the environment.
// The result is immutable and injected at construction time; no component
// reads configuration from ambient state.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	AuthServerURL string
	APIBaseURL    string
	Scopes        []string

	Port        string
	DBPath      string
	TemplateDir string
}

// FromEnv reads every required variable, failing with a list of what is
// missing or malformed rather than on the first problem.
func FromEnv() (*Config, error) {
	var missing []string
	read := func(name string) string {
		v, present := os.LookupEnv(name)
		if !present || v == "" {
			missing = append(missing, name)
		}
		return v
	}

	cfg := &Config{
		ClientID:      read("CLIENT_ID"),
		ClientSecret:  read("CLIENT_SECRET"),
		RedirectURI:   read("REDIRECT_URI"),
		AuthServerURL: strings.TrimSuffix(read("AUTH_SERVER_URL"), "/"),
		APIBaseURL:    strings.TrimSuffix(read("API_BASE_URL"), "/"),
		Scopes:        strings.Fields(read("SCOPES")),
		Port:          read("PORT"),
		DBPath:        read("DB_PATH"),
		TemplateDir:   read("TEMPLATE_DIR"),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	for name, value := range map[string]string{
		"REDIRECT_URI":    cfg.RedirectURI,
		"AUTH_SERVER_URL": cfg.AuthServerURL,
		"API_BASE_URL":    cfg.APIBaseURL,
	} {
		if _, err := url.ParseRequestURI(value); err != nil {
			return nil, fmt.Errorf("env var %s is not a valid URL: %v", name, err)
		}
	}

	return cfg, nil
}
