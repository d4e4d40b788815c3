package main

import (
	"os"
	"path/filepath"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/client"
	"github.com/spf13/cobra"
)

var (
	apiURL      string
	sessionFile string
)

func init() {
	defaultSession := "travelplanner-session.json"
	if dir, err := os.UserConfigDir(); err == nil {
		defaultSession = filepath.Join(dir, "travelplanner", "session.json")
	}
	defaultURL := os.Getenv("TRAVEL_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080/api"
	}

	for _, cmd := range []*cobra.Command{loginCmd, logoutCmd, registerCmd, planCmd} {
		cmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API base URL (env TRAVEL_API_URL)")
		cmd.PersistentFlags().StringVar(&sessionFile, "session", defaultSession, "session file")
	}
}

func newClient(opts ...client.Option) (*client.Client, error) {
	return client.New(apiURL, append([]client.Option{client.WithSessionFile(sessionFile)}, opts...)...)
}
