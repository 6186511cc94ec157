package app

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/bend_glove/internal/config"
	"github.com/relabs-tech/bend_glove/internal/glove"
)

// publishSamples reads src once per interval and hands every sample to
// publish until ctx is cancelled. Source errors are logged and skipped.
func publishSamples(ctx context.Context, src glove.Source, interval, logInterval time.Duration, publish func(glove.Sample)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		sent    int
		lastLog time.Time
	)
	for {
		select {
		case <-ctx.Done():
			log.Printf("producer: stopped after %d samples", sent)
			return
		case t := <-ticker.C:
			s, err := src.Next()
			if err != nil {
				log.Printf("producer: error from glove source: %v", err)
				continue
			}
			publish(s)
			sent++

			if t.Sub(lastLog) >= logInterval {
				lastLog = t
				log.Printf("producer: %d samples, fingers=%.2f roll=%.2f", sent, s.Fingers, s.Roll)
			}
		}
	}
}

// RunGloveProducer publishes mock glove samples to TOPIC_SAMPLE.
func RunGloveProducer(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Println("producer: connected to MQTT, starting publish loop")

	src := glove.NewMockSource(cfg.MockVectors)
	if cfg.MockVectors {
		log.Println("producer: mock glove sends forward/up vectors")
	} else {
		log.Println("producer: mock glove sends roll only")
	}

	publish := jsonPublisher(client, "producer")
	publishSamples(ctx, src,
		time.Duration(cfg.SampleInterval)*time.Millisecond,
		time.Duration(cfg.ConsoleLogInterval)*time.Millisecond,
		func(s glove.Sample) { publish(cfg.TopicSample, false, s) },
	)
	return nil
}
