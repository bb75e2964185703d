package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

func newWatchCommand() *cobra.Command {
	var baseURL, origin string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live processing and export events from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := websocketURL(baseURL, "/ws")
			if err != nil {
				return err
			}
			header := http.Header{}
			if origin != "" {
				header.Set("Origin", origin)
			}

			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, header)
			if err != nil {
				return fmt.Errorf("dial %s: %w", wsURL, err)
			}
			defer conn.Close()

			go func() {
				<-cmd.Context().Done()
				_ = conn.Close()
			}()

			fmt.Fprintf(cmd.ErrOrStderr(), "connected to %s\n", wsURL)
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(msg))
			}
		},
	}

	cmd.Flags().StringVar(&baseURL, "api", defaultBaseURL, "API base URL")
	cmd.Flags().StringVar(&origin, "origin", "", "Origin header to send")
	return cmd
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base url %q", baseURL)
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: path}).String(), nil
}
