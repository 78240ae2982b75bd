package stream

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
	"github.com/DHRUVXJANI/EdgeTune/errors"
	"github.com/DHRUVXJANI/EdgeTune/metric"
	"github.com/DHRUVXJANI/EdgeTune/pkg/retry"
)

// newStreamServer starts an in-process WebSocket server whose handler runs
// once per accepted connection.
func newStreamServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// holdOpen blocks until the peer closes the connection.
func holdOpen(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func mustFrame(t *testing.T, typ envelope.Type, data any) []byte {
	t.Helper()
	raw, err := envelope.Encode(typ, data)
	require.NoError(t, err)
	return raw
}

func fastBackoff() retry.Config {
	return retry.Config{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func startClient(t *testing.T, cfg Config, options ...Option) *Client {
	t.Helper()

	client, err := New(cfg, options...)
	require.NoError(t, err)
	require.NoError(t, client.Start(context.Background()))
	t.Cleanup(func() { _ = client.Stop() })
	return client
}

func TestNew_DefaultsAndValidation(t *testing.T) {
	client, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, client.cfg.URL)
	assert.Equal(t, 120, client.cfg.Capacities.Telemetry)
	assert.Equal(t, 50, client.cfg.Capacities.Decisions)
	assert.Equal(t, 50, client.cfg.Capacities.Explanations)
	assert.Equal(t, 20, client.cfg.Capacities.Suggestions)
	assert.Equal(t, StateIdle, client.State())
	assert.False(t, client.Connected())

	_, err = New(Config{URL: "http://localhost:8000/ws"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidConfig))

	_, err = New(Config{URL: "ws://"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidConfig))
}

func TestClient_TelemetryHistoryEviction(t *testing.T) {
	// 130 telemetry frames through a 120-slot history must leave exactly
	// the frames 11..130 in arrival order.
	url := newStreamServer(t, func(conn *websocket.Conn) {
		for i := 1; i <= 130; i++ {
			frame := mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{
				Timestamp: float64(i),
				GPUUtil:   50,
			})
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
		holdOpen(conn)
	})

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()})

	require.Eventually(t, func() bool {
		return client.Sinks().Telemetry.Len() == 120
	}, 5*time.Second, 10*time.Millisecond)

	snapshot := client.Sinks().Telemetry.Snapshot()
	require.Len(t, snapshot, 120)
	assert.Equal(t, 11.0, snapshot[0].Timestamp)
	assert.Equal(t, 130.0, snapshot[119].Timestamp)

	latest, ok := client.Sinks().LatestTelemetry.Get()
	require.True(t, ok)
	assert.Equal(t, 130.0, latest.Timestamp)

	assert.True(t, client.Connected())
	assert.Equal(t, StateOpen, client.State())
}

func TestClient_RoutesAllSinkTypes(t *testing.T) {
	total := 3
	url := newStreamServer(t, func(conn *websocket.Conn) {
		frames := [][]byte{
			mustFrame(t, envelope.TypeAutopilotDecision, envelope.AutopilotDecision{
				Timestamp: 1, Action: "reduce_resolution", Reason: "vram pressure",
			}),
			mustFrame(t, envelope.TypeLLMExplanation, envelope.LLMExplanation{
				Text: "lowered resolution to relieve VRAM", Timestamp: 1,
			}),
			mustFrame(t, envelope.TypeAdvisorSuggestion, envelope.AdvisorSuggestion{
				Text: "consider INT8", Category: "quantization", Timestamp: 1,
			}),
			mustFrame(t, envelope.TypeDetectionSummary, envelope.DetectionSummary{
				Counts: map[string]int{"person": 2, "car": 1}, Total: 3, Timestamp: 1,
			}),
			mustFrame(t, envelope.TypeSourceProgress, envelope.SourceProgress{
				Progress: 0.5, Frame: 100, Total: &total,
			}),
			mustFrame(t, envelope.TypeStatus, envelope.Status{
				Status: "completed", Message: "benchmark finished",
			}),
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
		holdOpen(conn)
	})

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()})
	sinks := client.Sinks()

	require.Eventually(t, func() bool {
		_, ok := sinks.Notifications.Current()
		return sinks.Decisions.Len() == 1 &&
			sinks.Explanations.Len() == 1 &&
			sinks.Suggestions.Len() == 1 &&
			ok
	}, 5*time.Second, 10*time.Millisecond)

	decision, ok := sinks.Decisions.Latest()
	require.True(t, ok)
	assert.Equal(t, "reduce_resolution", decision.Action)

	detection, ok := sinks.Detections.Get()
	require.True(t, ok)
	assert.Equal(t, 3, detection.Total)

	progress, ok := sinks.Progress.Get()
	require.True(t, ok)
	require.NotNil(t, progress.Total)
	assert.Equal(t, 3, *progress.Total)

	notification, ok := sinks.Notifications.Current()
	require.True(t, ok)
	assert.Equal(t, "completed", notification.Status)
}

func TestClient_FramePublisherDelivery(t *testing.T) {
	url := newStreamServer(t, func(conn *websocket.Conn) {
		frame := mustFrame(t, envelope.TypeVideoFrame, envelope.VideoFrame{
			Frame: "aW1hZ2U=", Timestamp: 42,
		})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		holdOpen(conn)
	})

	client, err := New(Config{URL: url, Backoff: fastBackoff()})
	require.NoError(t, err)

	got := make(chan envelope.VideoFrame, 1)
	client.Sinks().Frames.Subscribe(func(f envelope.VideoFrame) {
		got <- f
	})

	require.NoError(t, client.Start(context.Background()))
	t.Cleanup(func() { _ = client.Stop() })

	select {
	case f := <-got:
		assert.Equal(t, 42.0, f.Timestamp)
		assert.Equal(t, "aW1hZ2U=", f.Frame)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for video frame delivery")
	}
}

func TestClient_MalformedAndUnknownFramesIgnored(t *testing.T) {
	url := newStreamServer(t, func(conn *websocket.Conn) {
		frames := [][]byte{
			[]byte("not json at all"),
			[]byte(`{"data": {"x": 1}}`),                         // missing type tag
			[]byte(`{"type": "wormhole", "data": {}}`),           // unknown tag
			[]byte(`{"type": "telemetry", "data": "not a map"}`), // bad body
			mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{Timestamp: 7}),
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
		holdOpen(conn)
	})

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()})

	require.Eventually(t, func() bool {
		return client.Sinks().Telemetry.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Only the one valid frame landed; the garbage changed nothing.
	latest, ok := client.Sinks().Telemetry.Latest()
	require.True(t, ok)
	assert.Equal(t, 7.0, latest.Timestamp)
	assert.Equal(t, 1, client.Sinks().Telemetry.Len())
}

func TestClient_RepliesToServerPing(t *testing.T) {
	pong := make(chan envelope.Envelope, 1)

	url := newStreamServer(t, func(conn *websocket.Conn) {
		frame := mustFrame(t, envelope.TypePing, envelope.Ping{Timestamp: 1})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}

		var env envelope.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		pong <- env
		holdOpen(conn)
	})

	startClient(t, Config{URL: url, Backoff: fastBackoff()})

	select {
	case env := <-pong:
		assert.Equal(t, envelope.TypePong, env.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for pong reply")
	}
}

func TestClient_ClientSidePing(t *testing.T) {
	ping := make(chan envelope.Envelope, 1)

	url := newStreamServer(t, func(conn *websocket.Conn) {
		var env envelope.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		select {
		case ping <- env:
		default:
		}
		holdOpen(conn)
	})

	startClient(t, Config{
		URL:          url,
		Backoff:      fastBackoff(),
		PingInterval: 20 * time.Millisecond,
	})

	select {
	case env := <-ping:
		assert.Equal(t, envelope.TypePing, env.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for keep-alive ping")
	}
}

func TestClient_ReconnectPreservesSinks(t *testing.T) {
	var connCount atomic.Int32

	url := newStreamServer(t, func(conn *websocket.Conn) {
		n := connCount.Add(1)
		frame := mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{
			Timestamp: float64(n),
		})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		if n == 1 {
			// Drop the first connection to force a reconnect.
			return
		}
		holdOpen(conn)
	})

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()})

	require.Eventually(t, func() bool {
		return connCount.Load() >= 2 && client.Sinks().Telemetry.Len() >= 2
	}, 5*time.Second, 10*time.Millisecond)

	// History carried frames from both connections: never cleared on
	// reconnect.
	snapshot := client.Sinks().Telemetry.Snapshot()
	require.GreaterOrEqual(t, len(snapshot), 2)
	assert.Equal(t, 1.0, snapshot[0].Timestamp)
	assert.Equal(t, 2.0, snapshot[1].Timestamp)
}

func TestClient_BackoffWhileServerDown(t *testing.T) {
	// Nothing listens on this address; the client must keep retrying
	// without ever surfacing an error.
	client := startClient(t, Config{
		URL:     "ws://127.0.0.1:1/ws",
		Backoff: fastBackoff(),
	})

	assert.Eventually(t, func() bool {
		return client.errorCount.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond)

	assert.False(t, client.Connected())

	status := client.Health()
	assert.False(t, status.IsHealthy())
}

func TestClient_DroppedConnectionBacksOff(t *testing.T) {
	var mu sync.Mutex
	var accepts []time.Time

	// Flapping backend: every connection is accepted and then dropped
	// immediately. Redials must still honor the backoff schedule.
	url := newStreamServer(t, func(*websocket.Conn) {
		mu.Lock()
		accepts = append(accepts, time.Now())
		mu.Unlock()
	})

	startClient(t, Config{URL: url, Backoff: retry.Config{
		InitialDelay: 150 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(accepts) >= 3
	}, 10*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < 3; i++ {
		gap := accepts[i].Sub(accepts[i-1])
		assert.GreaterOrEqual(t, gap, 150*time.Millisecond, "redial %d not delayed", i)
	}
}

func TestClient_RetryCounterResetsAfterOpen(t *testing.T) {
	var (
		dials atomic.Int32
		mu    sync.Mutex
		opens []time.Time
	)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}

	// Dial 1 opens and drops, dials 2..4 are refused, dial 5 opens and
	// drops, dial 6 sticks.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := dials.Add(1)
		if n >= 2 && n <= 4 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		mu.Lock()
		opens = append(opens, time.Now())
		mu.Unlock()

		frame := mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{Timestamp: float64(n)})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		if n <= 5 {
			return
		}
		holdOpen(conn)
	}))
	t.Cleanup(server.Close)

	client := startClient(t, Config{
		URL: "ws" + strings.TrimPrefix(server.URL, "http"),
		Backoff: retry.Config{
			InitialDelay: 25 * time.Millisecond,
			MaxDelay:     800 * time.Millisecond,
			Multiplier:   2.0,
		},
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(opens) >= 3
	}, 10*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	// Drop then three refused dials: delays 25+50+100+200ms before the
	// second open.
	escalated := opens[1].Sub(opens[0])
	assert.GreaterOrEqual(t, escalated, 300*time.Millisecond)

	// The second open reset the counter, so the redial after its drop
	// waits only the initial delay, not the escalated 400ms.
	reset := opens[2].Sub(opens[1])
	assert.Less(t, reset, 200*time.Millisecond)

	// History accumulated across the whole flap sequence.
	require.Eventually(t, func() bool {
		return client.Sinks().Telemetry.Len() >= 3
	}, 5*time.Second, 10*time.Millisecond)
	snapshot := client.Sinks().Telemetry.Snapshot()
	assert.Equal(t, 1.0, snapshot[0].Timestamp)
}

func TestClient_StopIsTerminal(t *testing.T) {
	release := make(chan struct{})
	url := newStreamServer(t, func(conn *websocket.Conn) {
		holdOpen(conn)
		close(release)
	})

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()})

	require.Eventually(t, client.Connected, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, client.Stop())
	assert.Equal(t, StateIdle, client.State())
	assert.False(t, client.Connected())

	// The server saw the connection close; no reconnect follows.
	select {
	case <-release:
	case <-time.After(2 * time.Second):
		t.Fatal("server connection was not closed on Stop")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateIdle, client.State())

	// Stop again is a no-op.
	require.NoError(t, client.Stop())
}

func TestClient_DoubleStartRejected(t *testing.T) {
	url := newStreamServer(t, holdOpen)

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()})

	err := client.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestClient_ResetClearsSinks(t *testing.T) {
	afterReset := make(chan struct{})
	url := newStreamServer(t, func(conn *websocket.Conn) {
		frames := [][]byte{
			mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{Timestamp: 1}),
			mustFrame(t, envelope.TypeStatus, envelope.Status{Status: "info", Message: "hi"}),
			mustFrame(t, envelope.TypeDetectionSummary, envelope.DetectionSummary{Total: 5}),
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
		<-afterReset
		frame := mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{Timestamp: 2})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		holdOpen(conn)
	})

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()})
	sinks := client.Sinks()

	require.Eventually(t, func() bool {
		_, ok := sinks.Detections.Get()
		return sinks.Telemetry.Len() == 1 && ok
	}, 5*time.Second, 10*time.Millisecond)

	client.Reset()

	assert.Equal(t, 0, sinks.Telemetry.Len())
	_, ok := sinks.LatestTelemetry.Get()
	assert.False(t, ok)
	_, ok = sinks.Detections.Get()
	assert.False(t, ok)
	_, ok = sinks.Notifications.Current()
	assert.False(t, ok)

	// Still connected; reset is a session boundary, not a teardown.
	assert.True(t, client.Connected())

	// Routing keeps working after a reset.
	close(afterReset)
	require.Eventually(t, func() bool {
		latest, ok := sinks.LatestTelemetry.Get()
		return ok && latest.Timestamp == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, sinks.Telemetry.Len())
}

func TestClient_StalenessDegradesHealth(t *testing.T) {
	url := newStreamServer(t, func(conn *websocket.Conn) {
		frame := mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{Timestamp: 1})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		holdOpen(conn)
	})

	client := startClient(t, Config{
		URL:        url,
		Backoff:    fastBackoff(),
		StaleAfter: 50 * time.Millisecond,
	})

	require.Eventually(t, func() bool {
		return client.Sinks().Telemetry.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Fresh: healthy.
	assert.True(t, client.Health().IsHealthy())

	// Silence beyond the threshold: degraded, still connected, no
	// reconnect.
	assert.Eventually(t, func() bool {
		return client.Health().IsDegraded()
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, client.Connected())
}

func TestClient_MetricsRegistered(t *testing.T) {
	registry := metric.NewRegistry()

	url := newStreamServer(t, func(conn *websocket.Conn) {
		frame := mustFrame(t, envelope.TypeTelemetry, envelope.Telemetry{Timestamp: 1})
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		holdOpen(conn)
	})

	client := startClient(t, Config{URL: url, Backoff: fastBackoff()}, WithMetrics(registry))

	require.Eventually(t, func() bool {
		return client.Sinks().Telemetry.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["edgetune_stream_messages_received_total"])
	assert.True(t, names["edgetune_stream_connected"])
	assert.True(t, names["edgetune_history_size"])
}
