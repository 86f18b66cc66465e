package verify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/logfields"
)

// StreamName is the JetStream stream that captures broken href events.
const StreamName = "NAVINDEX_BROKEN_HREFS"

// Publisher receives the outcome of verification runs.
type Publisher interface {
	PublishBrokenHref(ctx context.Context, event *BrokenHrefEvent) error
	PutSummary(ctx context.Context, summary *Summary) error
}

// NATSClient publishes broken hrefs to JetStream and keeps the last summary
// per site in a JetStream key-value bucket.
type NATSClient struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	kv      jetstream.KeyValue
	subject string
	bucket  string
}

// NewNATSClient connects to NATS and prepares the stream and bucket.
func NewNATSClient(ctx context.Context, cfg *config.NATSConfig) (*NATSClient, error) {
	if !cfg.Enabled() {
		return nil, errors.ConfigError("nats url is not configured").Build()
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("navindex"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "connect to NATS").
			WithRetry(errors.RetryBackoff).
			WithContext("url", cfg.URL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNetwork, "create JetStream context").Build()
	}

	client := &NATSClient{conn: conn, js: js, subject: cfg.Subject, bucket: cfg.KVBucket}
	if err := client.init(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("NATS client initialized for verification reports",
		logfields.URL(cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("kv_bucket", cfg.KVBucket))
	return client, nil
}

func (c *NATSClient) init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Broken navigation hrefs found by navindex",
		Subjects:    []string{c.subject},
		MaxAge:      7 * 24 * time.Hour,
	}); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "create broken href stream").Build()
	}

	kv, err := c.js.KeyValue(ctx, c.bucket)
	if err == nil {
		c.kv = kv
		return nil
	}
	kv, err = c.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      c.bucket,
		Description: "Last verification summary per site",
		History:     1,
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "create KV bucket").
			WithContext("bucket", c.bucket).
			Build()
	}
	c.kv = kv
	slog.Info("Created KV bucket for verification summaries", slog.String("bucket", c.bucket))
	return nil
}

// PublishBrokenHref publishes one event.
func (c *NATSClient) PublishBrokenHref(ctx context.Context, event *BrokenHrefEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal broken href event").Build()
	}
	if _, err := c.js.Publish(ctx, c.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "publish broken href event").
			WithRetry(errors.RetryBackoff).
			Build()
	}
	slog.Debug("Published broken href event", logfields.Href(event.Href), slog.String("reason", event.Reason))
	return nil
}

var kvKeyUnsafe = regexp.MustCompile(`[^-_=.a-zA-Z0-9]`)

// SummaryKey returns the KV key used for a site.
func SummaryKey(site string) string {
	return "summary." + kvKeyUnsafe.ReplaceAllString(site, "_")
}

// PutSummary stores summary under the site's key.
func (c *NATSClient) PutSummary(ctx context.Context, summary *Summary) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	data, err := json.Marshal(summary)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "marshal summary").Build()
	}
	if _, err := c.kv.Put(ctx, SummaryKey(summary.Site), data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "store summary").Build()
	}
	return nil
}

// GetSummary returns the stored summary for site, or nil when none exists.
func (c *NATSClient) GetSummary(ctx context.Context, site string) (*Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	entry, err := c.kv.Get(ctx, SummaryKey(site))
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, errors.WrapError(err, errors.CategoryNetwork, "read summary").Build()
	}
	var s Summary
	if err := json.Unmarshal(entry.Value(), &s); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "decode summary").Build()
	}
	return &s, nil
}

// Close closes the NATS connection.
func (c *NATSClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}
