package telemetry

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client tracks anonymous usage events. Track never blocks the caller;
// Close flushes whatever is still queued before the process exits.
type Client interface {
	Track(event string, properties Properties)
	Close() error
}

// Properties is a named bag of event properties.
type Properties = map[string]any

// enqueuer is the subset of the PostHog SDK this package depends on,
// narrowed so a fake can stand in during tests.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// sinkClient sends events to PostHog asynchronously.
type sinkClient struct {
	mu          sync.RWMutex
	sink        enqueuer
	config      *Config
	version     string
	initialized bool
}

// ClientConfig configures a new PostHog-backed Client.
type ClientConfig struct {
	// APIKey is the PostHog project API key. An empty key yields an
	// uninitialized client whose Track calls are no-ops.
	APIKey string

	// Version is the missionforge build version attached to every event.
	Version string

	Config *Config

	// Endpoint overrides the default PostHog cloud endpoint, for a
	// self-hosted PostHog instance. Empty uses the SDK default.
	Endpoint string
}

// NewPostHogClient builds a Client from cfg. If cfg.APIKey is empty or
// cfg.Config is nil the returned client is inert: Track is a no-op and
// Close always succeeds.
func NewPostHogClient(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" || cfg.Config == nil {
		return &sinkClient{config: cfg.Config, version: cfg.Version}, nil
	}

	phConfig := posthog.Config{
		BatchSize: 10,
		Interval:  time.Second,
		Logger:    quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}

	ph, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}

	return &sinkClient{
		sink:        ph,
		config:      cfg.Config,
		version:     cfg.Version,
		initialized: true,
	}, nil
}

func newPostHogClientWithEnqueuer(enq enqueuer, cfg *Config, version string) *sinkClient {
	return &sinkClient{sink: enq, config: cfg, version: version, initialized: true}
}

// Track enqueues event with properties merged over a fixed set of
// standard fields (os, arch, cli_version). A disabled or uninitialized
// client drops the event silently.
func (c *sinkClient) Track(event string, properties Properties) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized || c.config == nil || !c.config.IsEnabled() {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	props.Set("os", runtime.GOOS)
	props.Set("arch", runtime.GOARCH)
	props.Set("cli_version", c.version)
	// No person-profile processing: events are anonymous, never attached
	// to a durable user identity.
	props.Set("$process_person_profile", false)

	_ = c.sink.Enqueue(posthog.Capture{
		DistinctId: c.config.AnonymousID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes the queue through the underlying sink's own timeout.
func (c *sinkClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || c.sink == nil {
		return nil
	}
	return c.sink.Close()
}

// NoopClient discards every event. Used when telemetry is disabled or
// unconfigured.
type NoopClient struct{}

func (NoopClient) Track(string, Properties) {}
func (NoopClient) Close() error             { return nil }

// NewNoopClient returns a Client that discards everything.
func NewNoopClient() Client { return NoopClient{} }

// quietPostHogLogger discards the SDK's own log output so it never mixes
// into command output.
type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...any) {}
func (quietPostHogLogger) Logf(string, ...any)   {}
func (quietPostHogLogger) Warnf(string, ...any)  {}
func (quietPostHogLogger) Errorf(string, ...any) {}
