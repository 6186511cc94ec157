package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/bend_glove/internal/app"
	"github.com/relabs-tech/bend_glove/internal/config"
)

var (
	configPath string
	keyboard   bool
)

func keyboardInput() io.Reader {
	if !keyboard {
		return nil
	}
	return os.Stdin
}

var rootCmd = &cobra.Command{
	Use:          "interpreter",
	Short:        "Classify gestures and compensate orientation from glove samples",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		if err := config.InitGlobal(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		defer app.SetupLogging(config.Get()).Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.RunInterpreter(ctx, keyboardInput())
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "glove_config.txt", "path to the KEY=VALUE configuration file")
	rootCmd.Flags().BoolVar(&keyboard, "keyboard", false, "read r + Enter from stdin to set the reference pose")
}

func main() {
	log.Println("starting bend-glove interpreter")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
