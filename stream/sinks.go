package stream

import (
	"time"

	"github.com/DHRUVXJANI/EdgeTune/envelope"
	"github.com/DHRUVXJANI/EdgeTune/errors"
	"github.com/DHRUVXJANI/EdgeTune/framepub"
	"github.com/DHRUVXJANI/EdgeTune/metric"
	"github.com/DHRUVXJANI/EdgeTune/notify"
	"github.com/DHRUVXJANI/EdgeTune/pkg/buffer"
)

// Sinks is the client-side session state the router fills: bounded histories
// for scrolling views, latest-value slots for gauges, the notification
// channel, and the frame publisher. Sinks survive reconnects; only an
// explicit Reset empties them.
type Sinks struct {
	Telemetry    *buffer.History[envelope.Telemetry]
	Decisions    *buffer.History[envelope.AutopilotDecision]
	Explanations *buffer.History[envelope.LLMExplanation]
	Suggestions  *buffer.History[envelope.AdvisorSuggestion]

	LatestTelemetry *Slot[envelope.Telemetry]
	Detections      *Slot[envelope.DetectionSummary]
	Progress        *Slot[envelope.SourceProgress]

	Notifications *notify.Channel
	Frames        *framepub.Publisher
}

// NewSinks builds the sink set for the given capacities. A nil registry
// skips Prometheus export on the histories.
func NewSinks(caps Capacities, notificationTTL time.Duration, registry *metric.Registry) (*Sinks, error) {
	telemetry, err := buffer.NewHistory(caps.Telemetry, histOpts[envelope.Telemetry](registry, "telemetry")...)
	if err != nil {
		return nil, errors.WrapInvalid(err, "stream", "NewSinks", "create telemetry history")
	}
	decisions, err := buffer.NewHistory(caps.Decisions, histOpts[envelope.AutopilotDecision](registry, "decisions")...)
	if err != nil {
		return nil, errors.WrapInvalid(err, "stream", "NewSinks", "create decision history")
	}
	explanations, err := buffer.NewHistory(caps.Explanations, histOpts[envelope.LLMExplanation](registry, "explanations")...)
	if err != nil {
		return nil, errors.WrapInvalid(err, "stream", "NewSinks", "create explanation history")
	}
	suggestions, err := buffer.NewHistory(caps.Suggestions, histOpts[envelope.AdvisorSuggestion](registry, "suggestions")...)
	if err != nil {
		return nil, errors.WrapInvalid(err, "stream", "NewSinks", "create suggestion history")
	}

	return &Sinks{
		Telemetry:    telemetry,
		Decisions:    decisions,
		Explanations: explanations,
		Suggestions:  suggestions,

		LatestTelemetry: &Slot[envelope.Telemetry]{},
		Detections:      &Slot[envelope.DetectionSummary]{},
		Progress:        &Slot[envelope.SourceProgress]{},

		Notifications: notify.New(notificationTTL),
		Frames:        framepub.New(),
	}, nil
}

// Reset empties every data sink: histories, latest slots, and the visible
// notification. Frame subscriptions are registrations, not data, and stay
// in place.
func (s *Sinks) Reset() {
	s.Telemetry.Clear()
	s.Decisions.Clear()
	s.Explanations.Clear()
	s.Suggestions.Clear()

	s.LatestTelemetry.Clear()
	s.Detections.Clear()
	s.Progress.Clear()

	s.Notifications.Clear()
}

func histOpts[T any](registry *metric.Registry, name string) []buffer.Option[T] {
	if registry == nil {
		return nil
	}
	return []buffer.Option[T]{buffer.WithMetrics[T](registry, name)}
}
