// cmd/magick/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/errors"
	"magick-cards/internal/common/logger"
)

func main() {
	root, closeApp := newRootCmd()
	cmd, err := root.ExecuteC()
	closeApp()

	handler := errors.NewErrorHandler(logger.NewZapAdapter(logger.NewWithOutput("error", "json", "stderr")))
	if code := handler.Handle(cmd.CommandPath(), err); code != errors.ExitOK {
		os.Exit(code)
	}
}

// newRootCmd builds the command tree. The returned function releases whatever
// the executed command opened and must be called after Execute, even on error.
func newRootCmd() (*cobra.Command, func()) {
	var (
		configPath string
		a          *app
	)

	root := &cobra.Command{
		Use:           "magick",
		Short:         "Conversation cards for couples, with nearby places to act on them",
		Long:          "Draws question and mission cards and recommends nearby businesses to act on them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.LoadFromFile(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			a, err = newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default: ./configs/config.yaml or ./config.yaml)")

	appFn := func() *app { return a }
	root.AddCommand(
		newDailyCmd(appFn),
		newDrawCmd(appFn),
		newRecommendCmd(appFn),
		newFavoriteCmd(appFn),
		newSettingsCmd(appFn),
	)
	closeApp := func() {
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "shutdown:", err)
		}
		a = nil
	}
	return root, closeApp
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
