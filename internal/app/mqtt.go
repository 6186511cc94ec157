package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// publishFunc sends v as JSON to topic.
type publishFunc func(topic string, retained bool, v any)

func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect to %s: %w", broker, token.Error())
	}
	return client, nil
}

func subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler) error {
	token := client.Subscribe(topic, 0, handler)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, token.Error())
	}
	return nil
}

// jsonPublisher marshals and publishes with QoS 0, logging failures.
func jsonPublisher(client mqtt.Client, component string) publishFunc {
	return func(topic string, retained bool, v any) {
		payload, err := json.Marshal(v)
		if err != nil {
			log.Printf("%s: json marshal error (%s): %v", component, topic, err)
			return
		}
		if token := client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
			log.Printf("%s: MQTT publish error (%s): %v", component, topic, token.Error())
		}
	}
}
