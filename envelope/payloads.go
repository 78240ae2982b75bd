package envelope

// Telemetry is a periodic hardware/performance snapshot from the pipeline.
// Field names match the backend's telemetry monitor output.
type Telemetry struct {
	Timestamp float64 `json:"timestamp"`
	GPUUtil   float64 `json:"gpu_util"`   // 0-100
	VRAMUsed  float64 `json:"vram_used"`  // GB
	VRAMTotal float64 `json:"vram_total"` // GB
	CPUUtil   float64 `json:"cpu_util"`   // 0-100
	RAMUsed   float64 `json:"ram_used"`   // GB
	FPS       float64 `json:"fps"`
	LatencyMS float64 `json:"latency_ms"`
}

// AutopilotDecision records one optimization action taken by the autopilot
// controller, including the state transition and the parameters it applied.
type AutopilotDecision struct {
	Timestamp        float64            `json:"timestamp"`
	PreviousState    string             `json:"previous_state"`
	NewState         string             `json:"new_state"`
	Action           string             `json:"action"`
	Reason           string             `json:"reason"`
	ParamsApplied    map[string]any     `json:"params_applied"`
	TelemetrySummary map[string]float64 `json:"telemetry_summary"`
}

// LLMExplanation is a natural-language annotation of a decision.
type LLMExplanation struct {
	Text       string  `json:"text"`
	DecisionID string  `json:"decision_id"`
	Timestamp  float64 `json:"timestamp"`
}

// AdvisorSuggestion is a tuning tip produced by the advisor.
type AdvisorSuggestion struct {
	Text      string  `json:"text"`
	Category  string  `json:"category"`
	Timestamp float64 `json:"timestamp"`
}

// DetectionSummary aggregates detection counts for the current frame window.
type DetectionSummary struct {
	Counts    map[string]int `json:"counts"`
	Total     int            `json:"total"`
	Timestamp float64        `json:"timestamp"`
}

// SourceProgress reports playback position within a finite video source.
// Total is nil for live sources with no known frame count.
type SourceProgress struct {
	Progress float64 `json:"progress"` // 0..1
	Frame    int     `json:"frame"`
	Total    *int    `json:"total"`
	Paused   bool    `json:"paused"`
}

// VideoFrame carries one encoded video frame. Frame is a base64 JPEG; the
// client treats it as opaque and hands it to whatever renders it.
type VideoFrame struct {
	Frame     string  `json:"frame"`
	Timestamp float64 `json:"timestamp"`
}

// Status is a transient notification: a category plus human-readable text,
// with an optional opaque extra payload (e.g. a completion summary).
type Status struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Ping is the keep-alive body; the backend echoes a pong with its own
// timestamp. Both directions tolerate an empty body.
type Ping struct {
	Timestamp float64 `json:"timestamp,omitempty"`
}
