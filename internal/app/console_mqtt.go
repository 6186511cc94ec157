package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/bend_glove/internal/config"
	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/interpret"
)

// RunConsoleMQTT prints everything the interpreter publishes. Frames are
// printed only when the gesture changes unless allFrames is set.
func RunConsoleMQTT(ctx context.Context, allFrames bool) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to frames
	if err := subscribe(client, cfg.TopicFrame, func(_ mqtt.Client, msg mqtt.Message) {
		var f interpret.Frame
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: frame unmarshal error: %v", err)
			return
		}
		if allFrames || f.Change.Changed || f.Reference || f.Warning != "" {
			fmt.Println(formatFrame(f))
		}
	}); err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicFrame)

	// Subscribe to animation commands
	if err := subscribe(client, cfg.TopicAnimation, func(_ mqtt.Client, msg mqtt.Message) {
		var c gesture.AnimationCommand
		if err := json.Unmarshal(msg.Payload(), &c); err != nil {
			log.Printf("console: animation unmarshal error: %v", err)
			return
		}
		fmt.Println(formatAnimation(c))
	}); err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicAnimation)

	// Subscribe to status
	if err := subscribe(client, cfg.TopicStatus, func(_ mqtt.Client, msg mqtt.Message) {
		var s Status
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: status unmarshal error: %v", err)
			return
		}
		fmt.Println(formatStatus(s))
	}); err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicStatus)

	<-ctx.Done()

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
