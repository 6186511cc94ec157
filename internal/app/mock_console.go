// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/relabs-tech/bend_glove/internal/config"
	"github.com/relabs-tech/bend_glove/internal/glove"
	"github.com/relabs-tech/bend_glove/internal/interpret"
)

// RunMockConsole runs the mock glove through the sample loop in-process,
// without a broker, and prints each frame.
func RunMockConsole(ctx context.Context) error {
	cfg := config.Get()

	src := glove.NewMockSource(cfg.MockVectors)
	loop := interpret.NewLoop(interpret.Options{
		RollMode:         cfg.ReferenceRollMode,
		Clips:            cfg.Clips,
		ReferenceGesture: cfg.ReferenceGesture,
	})

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		s, err := src.Next()
		if err != nil {
			return err
		}

		f := loop.Tick(s)
		fmt.Println(formatFrame(f))
		if f.Animation != nil {
			fmt.Println(formatAnimation(*f.Animation))
		}
		if f.ClipError != "" {
			fmt.Println(formatStatus(Status{Connected: true, Message: f.ClipError}))
		}
	}
}
