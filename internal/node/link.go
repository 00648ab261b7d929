package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/soundlink/conductor/internal/logger"
)

// Status is the health state of a link. The only legal transitions are
// IDLE/DISCONNECTED/RECONNECTING -> CONNECTING -> CONNECTED, CONNECTED ->
// RECONNECTING on transport failure, and CONNECTING -> DISCONNECTED once
// retries are exhausted.
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
	StatusDisconnected
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ErrNodeUnavailable is returned by Request when the link is not CONNECTED.
// Callers should reselect a node rather than retry the same link.
var ErrNodeUnavailable = errors.New("node: link not connected")

// RemoteError carries a failure status reported by the node itself.
type RemoteError struct {
	NodeID     string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("node %s returned %d: %s", e.NodeID, e.StatusCode, e.Message)
}

// Penalty weights. Tunable policy: selection only relies on the score being
// monotone in each counter, never on the exact constants.
const (
	penaltySessionWeight = 2
	penaltyPendingWeight = 1
	penaltyFailureWeight = 4
)

// Config identifies one remote audio node from static configuration.
type Config struct {
	ID       string
	Address  string // base URL, ex: http://10.0.0.1:2333
	Password string
	Region   string // optional region label, ex: "eu"
}

// Options controls connect retry behavior and request timeouts for a link.
type Options struct {
	ConnectAttempts int           // max probe attempts per Connect call
	RetryInterval   time.Duration // fixed wait between probe attempts
	RequestTimeout  time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.ConnectAttempts <= 0 {
		out.ConnectAttempts = 3
	}
	if out.RetryInterval <= 0 {
		out.RetryInterval = 5 * time.Second
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = 10 * time.Second
	}
	return out
}

// Link is one persistent connection to one remote audio node. It owns REST
// dispatch toward that node and the live counters the penalty score is
// derived from. A link is created once at startup and reconnects in place;
// it is never destroyed during the process lifetime.
type Link struct {
	cfg  Config
	opts Options

	httpClient *http.Client
	logger     logger.Logger

	mu       sync.Mutex
	status   Status
	sessions int // guild sessions currently owned by this link
	pending  int // in-flight requests
	failures int // consecutive request/probe failures
}

// Stats is a point-in-time snapshot of a link's health and load.
type Stats struct {
	ID       string `json:"id"`
	Address  string `json:"address"`
	Region   string `json:"region,omitempty"`
	Status   string `json:"status"`
	Penalty  int    `json:"penalty"`
	Sessions int    `json:"sessions"`
	Pending  int    `json:"pending"`
	Failures int    `json:"failures"`
}

// NewLink builds a link in the IDLE state. It does not touch the network;
// call Connect to bring it up.
func NewLink(cfg Config, opts Options, log logger.Logger) *Link {
	o := opts.withDefaults()
	return &Link{
		cfg:        cfg,
		opts:       o,
		httpClient: &http.Client{Timeout: o.RequestTimeout},
		logger:     log,
		status:     StatusIdle,
	}
}

func (l *Link) ID() string     { return l.cfg.ID }
func (l *Link) Region() string { return l.cfg.Region }

func (l *Link) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Ready reports whether requests may be dispatched right now.
func (l *Link) Ready() bool { return l.Status() == StatusConnected }

// Penalty is the client-local load estimate for this link. Higher is worse.
func (l *Link) Penalty() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions*penaltySessionWeight +
		l.pending*penaltyPendingWeight +
		l.failures*penaltyFailureWeight
}

// AcquireSession records that a guild session is now owned by this link.
func (l *Link) AcquireSession() {
	l.mu.Lock()
	l.sessions++
	l.mu.Unlock()
}

// ReleaseSession records that a guild session no longer owns this link.
func (l *Link) ReleaseSession() {
	l.mu.Lock()
	if l.sessions > 0 {
		l.sessions--
	}
	l.mu.Unlock()
}

// Stats returns a consistent snapshot of the link's counters.
func (l *Link) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		ID:       l.cfg.ID,
		Address:  l.cfg.Address,
		Region:   l.cfg.Region,
		Status:   l.status.String(),
		Penalty:  l.sessions*penaltySessionWeight + l.pending*penaltyPendingWeight + l.failures*penaltyFailureWeight,
		Sessions: l.sessions,
		Pending:  l.pending,
		Failures: l.failures,
	}
}

// Connect brings the link to CONNECTED, probing the node up to the configured
// number of attempts with a fixed interval between them. Exhausting the
// attempts settles the link into DISCONNECTED; the failure is observable
// through Status, and the returned error carries the last probe failure.
func (l *Link) Connect(ctx context.Context) error {
	l.mu.Lock()
	switch l.status {
	case StatusConnected:
		l.mu.Unlock()
		return nil
	case StatusConnecting:
		l.mu.Unlock()
		return fmt.Errorf("node %s: connect already in progress", l.cfg.ID)
	}
	l.status = StatusConnecting
	l.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= l.opts.ConnectAttempts; attempt++ {
		lastErr = l.probe(ctx)
		if lastErr == nil {
			l.setStatus(StatusConnected)
			l.resetFailures()
			l.logger.Info("node connected",
				logger.String("node", l.cfg.ID),
				logger.Int("attempt", attempt))
			return nil
		}

		l.logger.Warn("node probe failed",
			logger.String("node", l.cfg.ID),
			logger.Int("attempt", attempt),
			logger.Error(lastErr))

		if attempt == l.opts.ConnectAttempts {
			break
		}

		timer := time.NewTimer(l.opts.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.setStatus(StatusDisconnected)
			return fmt.Errorf("node %s: connect canceled: %w", l.cfg.ID, ctx.Err())
		case <-timer.C:
		}
	}

	l.setStatus(StatusDisconnected)
	return fmt.Errorf("node %s: unreachable after %d attempts: %w",
		l.cfg.ID, l.opts.ConnectAttempts, lastErr)
}

// Close marks the link DISCONNECTED. The process never reconnects a closed
// link on its own; a later Connect may still bring it back.
func (l *Link) Close() {
	l.setStatus(StatusDisconnected)
}

// probe checks the node is reachable and accepts our credential.
func (l *Link) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint("version"), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", l.cfg.Password)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

// Request issues one REST call against the node and decodes the JSON reply
// into out (out may be nil when the reply body is irrelevant). It fails with
// ErrNodeUnavailable when the link is not CONNECTED and with *RemoteError
// when the node reports a failure status.
func (l *Link) Request(ctx context.Context, method, path string, body, out interface{}) error {
	l.mu.Lock()
	if l.status != StatusConnected {
		l.mu.Unlock()
		return ErrNodeUnavailable
	}
	l.pending++
	l.mu.Unlock()

	err := l.doRequest(ctx, method, path, body, out)

	l.mu.Lock()
	l.pending--
	if err == nil {
		l.failures = 0
	} else {
		l.failures++
		var remote *RemoteError
		if !errors.As(err, &remote) && l.status == StatusConnected {
			// Transport-level failure: the node may be gone. Flag the link
			// for the health watcher to reconnect in place.
			l.status = StatusReconnecting
		}
	}
	l.mu.Unlock()

	return err
}

func (l *Link) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", l.cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("node %s: %w", l.cfg.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RemoteError{
			NodeID:     l.cfg.ID,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("node %s: failed to decode response: %w", l.cfg.ID, err)
	}
	return nil
}

// SendVoiceUpdate dispatches the voice handshake for a guild to this node,
// authorizing it to join the voice channel.
func (l *Link) SendVoiceUpdate(ctx context.Context, guildID, sessionID, endpoint, token string) error {
	payload := voiceUpdatePayload{
		GuildID:   guildID,
		SessionID: sessionID,
		Event: voiceServerEvent{
			Endpoint: endpoint,
			Token:    token,
		},
	}
	return l.Request(ctx, http.MethodPost, "voiceupdate", payload, nil)
}

type voiceUpdatePayload struct {
	GuildID   string           `json:"guildId"`
	SessionID string           `json:"sessionId"`
	Event     voiceServerEvent `json:"event"`
}

type voiceServerEvent struct {
	Endpoint string `json:"endpoint"`
	Token    string `json:"token"`
}

func (l *Link) setStatus(s Status) {
	l.mu.Lock()
	l.status = s
	l.mu.Unlock()
}

func (l *Link) resetFailures() {
	l.mu.Lock()
	l.failures = 0
	l.mu.Unlock()
}

func (l *Link) endpoint(path string) string {
	return strings.TrimSuffix(l.cfg.Address, "/") + "/" + strings.TrimPrefix(path, "/")
}
