package app

import (
	"bufio"
	"context"
	"io"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rcrowley/go-metrics"

	"github.com/relabs-tech/bend_glove/internal/config"
	"github.com/relabs-tech/bend_glove/internal/glove"
	"github.com/relabs-tech/bend_glove/internal/interpret"
	"github.com/relabs-tech/bend_glove/internal/orientation"
)

const latestSampleKey = "latest"

// loopMetrics counts what the interpreter loop has seen since start.
type loopMetrics struct {
	registry     metrics.Registry
	ticks        metrics.Counter
	changes      metrics.Counter
	degenerate   metrics.Counter
	stale        metrics.Counter
	decodeErrors metrics.Counter
	references   metrics.Counter
	clipErrors   metrics.Counter
	samples      metrics.Meter
}

func newLoopMetrics() *loopMetrics {
	r := metrics.NewRegistry()
	return &loopMetrics{
		registry:     r,
		ticks:        metrics.NewRegisteredCounter("ticks", r),
		changes:      metrics.NewRegisteredCounter("gesture_changes", r),
		degenerate:   metrics.NewRegisteredCounter("degenerate", r),
		stale:        metrics.NewRegisteredCounter("stale_ticks", r),
		decodeErrors: metrics.NewRegisteredCounter("decode_errors", r),
		references:   metrics.NewRegisteredCounter("references", r),
		clipErrors:   metrics.NewRegisteredCounter("clip_errors", r),
		samples:      metrics.NewRegisteredMeter("samples", r),
	}
}

func (m *loopMetrics) logSummary() {
	log.Printf("interpreter: ticks=%d changes=%d degenerate=%d stale=%d decode_errors=%d references=%d clip_errors=%d rate=%.1f/s",
		m.ticks.Count(), m.changes.Count(), m.degenerate.Count(), m.stale.Count(),
		m.decodeErrors.Count(), m.references.Count(), m.clipErrors.Count(), m.samples.Rate1())
}

// interpreter owns the sample loop. MQTT callbacks only touch the sample
// cache and the reference channel; everything else runs on the goroutine
// calling run.
type interpreter struct {
	cfg     *config.Config
	loop    *interpret.Loop
	samples *ttlcache.Cache[string, glove.Sample]
	refs    chan struct{}
	publish publishFunc
	metrics *loopMetrics

	connected  bool
	statusSent bool
}

func newInterpreter(cfg *config.Config, publish publishFunc) *interpreter {
	samples := ttlcache.New[string, glove.Sample](
		ttlcache.WithTTL[string, glove.Sample](time.Duration(cfg.SampleStaleAfter)*time.Millisecond),
		ttlcache.WithDisableTouchOnHit[string, glove.Sample](),
	)
	return &interpreter{
		cfg: cfg,
		loop: interpret.NewLoop(interpret.Options{
			RollMode:         cfg.ReferenceRollMode,
			Clips:            cfg.Clips,
			ReferenceGesture: cfg.ReferenceGesture,
		}),
		samples: samples,
		refs:    make(chan struct{}, 1),
		publish: publish,
		metrics: newLoopMetrics(),
	}
}

// handleSample decodes a payload and makes it the latest sample. A bad
// payload leaves the previous sample in place.
func (it *interpreter) handleSample(payload []byte) {
	s, err := glove.Decode(payload)
	if err != nil {
		it.metrics.decodeErrors.Inc(1)
		log.Printf("interpreter: %v", err)
		return
	}
	if s.Time.IsZero() {
		s.Time = time.Now()
	}
	it.samples.Set(latestSampleKey, s, ttlcache.DefaultTTL)
	it.metrics.samples.Mark(1)
}

// requestReference queues a reference trigger. Requests arriving while one
// is pending are merged.
func (it *interpreter) requestReference() {
	select {
	case it.refs <- struct{}{}:
	default:
	}
}

func (it *interpreter) latest() (glove.Sample, bool) {
	item := it.samples.Get(latestSampleKey)
	if item == nil {
		return glove.Sample{}, false
	}
	return item.Value(), true
}

// applyReference sets the reference pose from the latest fresh sample.
func (it *interpreter) applyReference() {
	s, ok := it.latest()
	if !ok {
		log.Printf("interpreter: reference ignored: %s", msgNotConnected)
		return
	}
	if err := it.loop.SetReference(s); err != nil {
		log.Printf("interpreter: reference rejected: %v", err)
		return
	}
	it.metrics.references.Inc(1)
	cal := it.loop.Calibration()
	log.Printf("interpreter: reference set (anti-yaw %.1f°, reference roll %.1f°)", cal.AntiYaw.Angle(orientation.Identity()), cal.ReferenceRoll)
}

// tick runs one loop iteration on the latest sample, or reports the glove
// as disconnected when the sample has expired.
func (it *interpreter) tick(now time.Time) {
	s, ok := it.latest()
	if !ok {
		it.metrics.stale.Inc(1)
		it.setConnected(false, msgNotConnected, now)
		return
	}
	it.setConnected(true, "", now)

	f := it.loop.Tick(s)
	it.metrics.ticks.Inc(1)
	if interpret.IsDegenerate(f.Err) {
		it.metrics.degenerate.Inc(1)
	}
	if f.Reference {
		it.metrics.references.Inc(1)
		log.Printf("interpreter: reference set by %s gesture", f.Reading.Gesture)
	}
	it.publish(it.cfg.TopicFrame, false, f)

	if !f.Change.Changed {
		return
	}
	it.metrics.changes.Inc(1)
	log.Printf("interpreter: gesture %s -> %s", f.Previous, f.Reading.Gesture)
	if f.ClipError != "" {
		it.metrics.clipErrors.Inc(1)
		log.Printf("interpreter: %s", f.ClipError)
		it.publish(it.cfg.TopicStatus, true, Status{Connected: true, Message: f.ClipError, Time: now})
		return
	}
	it.publish(it.cfg.TopicAnimation, true, f.Animation)
}

// setConnected publishes the connection status on transitions only.
func (it *interpreter) setConnected(connected bool, msg string, now time.Time) {
	if it.statusSent && it.connected == connected {
		return
	}
	it.connected = connected
	it.statusSent = true
	if connected {
		log.Println("interpreter: glove connected")
	} else {
		log.Printf("interpreter: %s", msg)
	}
	it.publish(it.cfg.TopicStatus, true, Status{Connected: connected, Message: msg, Time: now})
}

func (it *interpreter) run(ctx context.Context) error {
	go it.samples.Start()
	defer it.samples.Stop()

	ticker := time.NewTicker(time.Duration(it.cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()
	summary := time.NewTicker(time.Duration(it.cfg.ConsoleLogInterval) * time.Millisecond)
	defer summary.Stop()

	for {
		select {
		case <-ctx.Done():
			it.metrics.logSummary()
			return nil
		case <-it.refs:
			it.applyReference()
		case now := <-ticker.C:
			it.tick(now)
		case <-summary.C:
			it.metrics.logSummary()
		}
	}
}

// watchKeyboard requests a reference for every line starting with r.
func watchKeyboard(ctx context.Context, in io.Reader, request func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(scanner.Text())), "r") {
			request()
		}
	}
}

// RunInterpreter subscribes to glove samples and reference requests and
// publishes one frame per SAMPLE_INTERVAL until ctx is cancelled. When
// keyboard is non-nil, typing r + Enter sets the reference pose.
func RunInterpreter(ctx context.Context, keyboard io.Reader) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDInterpreter)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("interpreter: connected to MQTT broker at %s", cfg.MQTTBroker)

	it := newInterpreter(cfg, jsonPublisher(client, "interpreter"))

	if err := subscribe(client, cfg.TopicSample, func(_ mqtt.Client, msg mqtt.Message) {
		it.handleSample(msg.Payload())
	}); err != nil {
		return err
	}
	log.Printf("interpreter: subscribed to %s", cfg.TopicSample)

	if cfg.TopicReference != "" {
		if err := subscribe(client, cfg.TopicReference, func(_ mqtt.Client, _ mqtt.Message) {
			it.requestReference()
		}); err != nil {
			return err
		}
		log.Printf("interpreter: subscribed to %s", cfg.TopicReference)
	}

	if keyboard != nil {
		go watchKeyboard(ctx, keyboard, it.requestReference)
		log.Println("interpreter: press r + Enter to set the reference pose")
	}

	log.Printf("interpreter: roll mode %s, reference gesture %s", cfg.ReferenceRollMode, cfg.ReferenceGesture)
	return it.run(ctx)
}
