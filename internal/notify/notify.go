// Package notify announces catalog edits to the dashboard's socket.io hub so
// open browser sessions can refresh their graph view.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// EventCatalogUpdated is the event name emitted after every saved edit.
const EventCatalogUpdated = "catalog_updated"

// DefaultTimeout bounds how long Dial waits for the hub to accept the
// connection.
const DefaultTimeout = 15 * time.Second

// Kinds of edit carried by an Event.
const (
	KindPrerequisitesSet = "prerequisites_set"
	KindCourseSaved      = "course_saved"
	KindCourseRemoved    = "course_removed"
	KindCoursePlaced     = "course_placed"
	KindTrackRemoved     = "track_removed"
)

// Event describes one completed edit.
type Event struct {
	Kind          string
	Course        string
	Track         string
	Prerequisites []string
	Time          time.Time
}

// Payload returns the event in the shape emitted on the wire.
func (e Event) Payload() map[string]any {
	prereqs := make([]any, 0, len(e.Prerequisites))
	for _, p := range e.Prerequisites {
		prereqs = append(prereqs, p)
	}
	return map[string]any{
		"kind":          e.Kind,
		"course":        e.Course,
		"track":         e.Track,
		"prerequisites": prereqs,
		"time":          e.Time.UTC().Format(time.RFC3339),
	}
}

// Notifier receives edit events. Implementations must not block the caller
// for long and must not fail the edit.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Options configure the socket.io connection.
type Options struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// SocketIO emits events over a persistent socket.io client connection.
type SocketIO struct {
	client *socket.Socket
}

// Dial connects to the hub at opts.URL and waits until the connection is
// accepted, rejected, ctx is cancelled, or the timeout elapses.
func Dial(ctx context.Context, opts Options) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("notifier", "socketio", "url", opts.URL)
	logger.Info("Connecting to notification hub...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notification URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notification URL %q must include scheme and host", opts.URL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	clientOpts := socket.DefaultOptions()
	clientOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		clientOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	clientOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, clientOpts)
	io := manager.Socket(opts.Namespace, clientOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to notification hub", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Notification hub refused connection", "error", err)
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{client: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Notify emits ev as EventCatalogUpdated. A dropped connection is logged and
// the event discarded.
func (s *SocketIO) Notify(ctx context.Context, ev Event) {
	logger := ctxlog.FromContext(ctx)
	if !s.client.Connected() {
		logger.Warn("Notification hub disconnected; dropping event.", "kind", ev.Kind, "course", ev.Course)
		return
	}
	logger.Debug("Emitting catalog event.", "kind", ev.Kind, "course", ev.Course, "sid", s.client.Id())
	s.client.Emit(EventCatalogUpdated, ev.Payload())
}

// Close disconnects from the hub.
func (s *SocketIO) Close() error {
	s.client.Disconnect()
	return nil
}

// Nop discards every event.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, Event) {}
