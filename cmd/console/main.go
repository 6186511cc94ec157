// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/bend_glove/internal/app"
	"github.com/relabs-tech/bend_glove/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "console",
	Short:        "Run the mock glove through the interpreter without a broker",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		if err := config.InitGlobal(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		defer app.SetupLogging(config.Get()).Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.RunMockConsole(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "glove_config.txt", "path to the KEY=VALUE configuration file")
}

func main() {
	log.Println("starting bend-glove (mock console)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
