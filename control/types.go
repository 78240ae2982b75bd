package control

// HealthInfo is the backend's health summary.
type HealthInfo struct {
	Status           string `json:"status"`
	GPUAvailable     bool   `json:"gpu_available"`
	InferenceRunning bool   `json:"inference_running"`
	LLMAvailable     bool   `json:"llm_available"`
}

// HardwareInfo describes the machine the backend runs on.
type HardwareInfo struct {
	GPUName           string  `json:"gpu_name"`
	GPUAvailable      bool    `json:"gpu_available"`
	VRAMTotalGB       float64 `json:"vram_total_gb"`
	ComputeCapability []int   `json:"compute_capability"`
	FP16Supported     bool    `json:"fp16_supported"`
	TensorCores       bool    `json:"tensor_cores"`
	Tier              string  `json:"tier"`
	CPUCores          int     `json:"cpu_cores"`
	RAMTotalGB        float64 `json:"ram_total_gb"`
	RecommendedDevice string  `json:"recommended_device"`
	AIConnected       bool    `json:"ai_connected"`
}

// AutopilotState mirrors the controller's state report.
type AutopilotState struct {
	State         string         `json:"state"`
	Mode          string         `json:"mode"`
	BaselineFPS   float64        `json:"baseline_fps"`
	IsBenchmark   bool           `json:"is_benchmark"`
	Tier          string         `json:"tier"`
	CurrentParams map[string]any `json:"current_params"`
}

// SourceInfo describes the active video source. Status is "no_active_source"
// when nothing is playing; the metadata fields are present only for file
// sources.
type SourceInfo struct {
	Status      string  `json:"status,omitempty"`
	Source      string  `json:"source,omitempty"`
	Paused      bool    `json:"paused,omitempty"`
	TotalFrames int     `json:"total_frames,omitempty"`
	NativeFPS   float64 `json:"native_fps,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
	Resolution  []int   `json:"resolution,omitempty"`
}

// PlaybackRequest drives the active source.
type PlaybackRequest struct {
	Action string  `json:"action"`
	Value  float64 `json:"value"`
}
