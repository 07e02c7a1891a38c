package command

// root.go defines the root command for the novelhub CLI.

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"novelhub/cmd/cli/command/client"
)

var (
	apiURL string // API server URL, shared by all subcommands
	token  string // access token (jwt) for authenticated commands

	api *client.HTTPClient
)

var rootCmd = &cobra.Command{
	Use:   "novelhub",
	Short: "novelhub - web novel platform command line interface",
	Long: `novelhub is a terminal client for the novelhub API. It can:
- browse the novel catalog and read chapters
- post, reply to, edit and delete comments
- follow a comment thread live while reading

Use "novelhub <command> -h" to see the flags for each command.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = client.NewHTTPClient(apiURL)
		if token != "" {
			api.SetToken(token)
		}
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("NOVELHUB_TOKEN"), "access token (defaults to NOVELHUB_TOKEN)")
}

// wsHost strips the scheme off the API URL for websocket dialing.
func wsHost() string {
	host := strings.TrimPrefix(apiURL, "http://")
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimSuffix(host, "/")
}
