package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/bend_glove/internal/config"
	"github.com/relabs-tech/bend_glove/internal/interpret"
)

const (
	panelWidth  = 128
	panelHeight = 64
	lineHeight  = 13
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	frame     interpret.Frame
	haveFrame bool

	status     Status
	haveStatus bool
}

type displaySnapshot struct {
	frame      interpret.Frame
	haveFrame  bool
	status     Status
	haveStatus bool
}

func (d *DisplayData) onFrame(payload []byte) {
	var f interpret.Frame
	if err := json.Unmarshal(payload, &f); err != nil {
		log.Printf("display: frame unmarshal error: %v", err)
		return
	}
	d.mu.Lock()
	d.frame = f
	d.haveFrame = true
	d.mu.Unlock()
}

func (d *DisplayData) onStatus(payload []byte) {
	var st Status
	if err := json.Unmarshal(payload, &st); err != nil {
		log.Printf("display: status unmarshal error: %v", err)
		return
	}
	d.mu.Lock()
	d.status = st
	d.haveStatus = true
	d.mu.Unlock()
}

// Read data without copying the mutex
func (d *DisplayData) snapshot() displaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displaySnapshot{
		frame:      d.frame,
		haveFrame:  d.haveFrame,
		status:     d.status,
		haveStatus: d.haveStatus,
	}
}

// panelLines picks up to four text lines for the OLED.
func panelLines(s displaySnapshot) []string {
	if s.haveStatus && !s.status.Connected {
		return []string{"Bend glove", "No sensor", "connected"}
	}
	if !s.haveFrame {
		return []string{"Bend glove", "Waiting..."}
	}
	f := s.frame
	lines := []string{
		fmt.Sprintf("G: %s", f.Reading.Gesture),
		fmt.Sprintf("I: %5.2f", f.Reading.Intensity),
		fmt.Sprintf("R: %6.1f", f.Orientation.RelativeRoll),
	}
	switch {
	case f.ClipError != "":
		lines = append(lines, "clip missing")
	case f.Orientation.Degenerate:
		lines = append(lines, "arm vertical")
	default:
		lines = append(lines, fmt.Sprintf("Y: %6.1f", f.Orientation.Pose.Yaw))
	}
	return lines
}

func renderPanel(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, panelWidth, panelHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, lineHeight*(i+1))
		drawer.DrawString(line)
	}
	return img
}

// RunDisplay mirrors the interpreter output on an SSD1306 OLED on the
// default I2C bus.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderPanel([]string{"Bend glove", "Starting..."}), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribe(client, cfg.TopicFrame, func(_ mqtt.Client, msg mqtt.Message) {
		data.onFrame(msg.Payload())
	}); err != nil {
		return err
	}
	if err := subscribe(client, cfg.TopicStatus, func(_ mqtt.Client, msg mqtt.Message) {
		data.onStatus(msg.Payload())
	}); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			img := renderPanel(panelLines(data.snapshot()))
			if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
		}
	}
}
