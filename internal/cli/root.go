// Package cli implements the itinera CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itinera/itinera"
)

var configPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "itinera",
	Short: "Human-in-the-loop trip planning",
	Long:  "Composes a trip proposal, waits for your approval, and revises exactly the parts you reject.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: $ITINERA_CONFIG or built-in defaults)")
}

func loadConfig() (*itinera.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("ITINERA_CONFIG")
	}
	if path == "" {
		return itinera.DefaultConfig(), nil
	}
	return itinera.LoadConfig(path)
}

func newService() (*itinera.Service, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return itinera.NewFromConfig(config)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
