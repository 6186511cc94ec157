// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/orientation"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker              string
	MQTTClientIDProducer    string
	MQTTClientIDInterpreter string
	MQTTClientIDConsole     string
	MQTTClientIDWeb         string
	MQTTClientIDDisplay     string

	// Topics
	TopicSample    string
	TopicReference string
	TopicFrame     string
	TopicAnimation string
	TopicStatus    string

	// Timing
	SampleInterval     int // milliseconds
	SampleStaleAfter   int // milliseconds; older samples count as disconnected
	ConsoleLogInterval int // milliseconds

	// Producer
	MockVectors bool // mock glove sends forward/up vectors, not only roll

	// Interpretation
	ReferenceRollMode orientation.RollMode
	ReferenceGesture  gesture.Gesture // Unknown disables the gesture trigger
	Clips             gesture.ClipTable

	// Web Server
	WebServerPort int

	// Display
	DisplayUpdateInterval int // milliseconds

	// Logging
	LogFile       string // empty: stderr only
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal() and Get().
//   - configOnce: ensures InitGlobal() only runs once.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		MQTTBroker:              "tcp://localhost:1883",
		MQTTClientIDProducer:    "glove-producer",
		MQTTClientIDInterpreter: "glove-interpreter",
		MQTTClientIDConsole:     "glove-console",
		MQTTClientIDWeb:         "glove-web",
		MQTTClientIDDisplay:     "glove-display",

		TopicSample:    "glove/sample",
		TopicReference: "glove/reference",
		TopicFrame:     "glove/frame",
		TopicAnimation: "glove/animation",
		TopicStatus:    "glove/status",

		SampleInterval:     20,
		SampleStaleAfter:   1000,
		ConsoleLogInterval: 5000,

		ReferenceRollMode: orientation.RollModeSource,
		ReferenceGesture:  gesture.Unknown,
		Clips:             gesture.DefaultClips(),

		WebServerPort: 8080,

		DisplayUpdateInterval: 200,

		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
		LogMaxAgeDays: 28,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default(). Blank lines and lines
// starting with # are skipped.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	if name, ok := strings.CutPrefix(key, "CLIP_"); ok {
		g, err := gesture.Parse(name)
		if err != nil {
			return fmt.Errorf("invalid clip key %q: %w", key, err)
		}
		if value == "" {
			delete(c.Clips, g)
		} else {
			c.Clips[g] = value
		}
		return nil
	}

	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_INTERPRETER":
		c.MQTTClientIDInterpreter = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_SAMPLE":
		c.TopicSample = value
	case "TOPIC_REFERENCE":
		c.TopicReference = value
	case "TOPIC_FRAME":
		c.TopicFrame = value
	case "TOPIC_ANIMATION":
		c.TopicAnimation = value
	case "TOPIC_STATUS":
		c.TopicStatus = value

	// Timing
	case "SAMPLE_INTERVAL":
		return setPositiveInt(&c.SampleInterval, key, value)
	case "SAMPLE_STALE_AFTER":
		return setPositiveInt(&c.SampleStaleAfter, key, value)
	case "CONSOLE_LOG_INTERVAL":
		return setPositiveInt(&c.ConsoleLogInterval, key, value)

	// Producer
	case "MOCK_VECTORS":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_VECTORS %q: %w", value, err)
		}
		c.MockVectors = b

	// Interpretation
	case "REFERENCE_ROLL_MODE":
		mode, err := orientation.ParseRollMode(value)
		if err != nil {
			return fmt.Errorf("invalid REFERENCE_ROLL_MODE: %w", err)
		}
		c.ReferenceRollMode = mode
	case "REFERENCE_GESTURE":
		if value == "" || strings.EqualFold(value, "none") {
			c.ReferenceGesture = gesture.Unknown
			return nil
		}
		g, err := gesture.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid REFERENCE_GESTURE: %w", err)
		}
		c.ReferenceGesture = g

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		return setPositiveInt(&c.DisplayUpdateInterval, key, value)

	// Logging
	case "LOG_FILE":
		c.LogFile = value
	case "LOG_MAX_SIZE_MB":
		return setPositiveInt(&c.LogMaxSizeMB, key, value)
	case "LOG_MAX_BACKUPS":
		return setPositiveInt(&c.LogMaxBackups, key, value)
	case "LOG_MAX_AGE_DAYS":
		return setPositiveInt(&c.LogMaxAgeDays, key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func setPositiveInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", key, n)
	}
	*dst = n
	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicSample == "" {
		return fmt.Errorf("TOPIC_SAMPLE is required")
	}
	if c.TopicFrame == "" {
		return fmt.Errorf("TOPIC_FRAME is required")
	}
	if c.SampleStaleAfter < c.SampleInterval {
		return fmt.Errorf("SAMPLE_STALE_AFTER (%d ms) must not be shorter than SAMPLE_INTERVAL (%d ms)", c.SampleStaleAfter, c.SampleInterval)
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
