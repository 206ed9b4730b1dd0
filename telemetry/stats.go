package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TraceRow is one sampled frame of a run.
type TraceRow struct {
	Frame      int     `csv:"frame"`
	SimTimeSec float64 `csv:"sim_time"`

	// Authoritative body state
	PosX  float64 `csv:"pos_x"`
	PosY  float64 `csv:"pos_y"`
	PosZ  float64 `csv:"pos_z"`
	VelX  float64 `csv:"vel_x"`
	VelY  float64 `csv:"vel_y"`
	VelZ  float64 `csv:"vel_z"`
	Yaw   float64 `csv:"yaw"`
	Roll  float64 `csv:"roll"`
	Speed float64 `csv:"speed"` // horizontal

	Flying  bool `csv:"flying"`
	Falling bool `csv:"falling"`

	// Animation state on each side of the boundary
	ServerAnim string  `csv:"server_anim"`
	ClientAnim string  `csv:"client_anim"`
	WalkSpeed  float64 `csv:"walk_anim_speed"`

	// Viewer camera
	CameraDistance float64 `csv:"camera_distance"`
	Tripod         bool    `csv:"tripod"`
	InputEnabled   bool    `csv:"input_enabled"`

	Actions int `csv:"actions"` // actions handled this frame
}

// RunSummary holds aggregate statistics for a whole run.
type RunSummary struct {
	Frames      int     `csv:"frames"`
	SimTimeSec  float64 `csv:"sim_time"`
	Actions     int     `csv:"actions"`
	Transitions int     `csv:"anim_transitions"` // client animation state changes

	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	HeightMin float64 `csv:"height_min"`
	HeightMax float64 `csv:"height_max"`

	Distance float64 `csv:"distance"` // horizontal path length

	Dropped uint64 `csv:"replication_dropped"`

	// Frames spent in each client animation state
	StateFrames map[string]int `csv:"-"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats calculates mean, std, median, p90 and max of speed samples.
func ComputeSpeedStats(values []float64) (mean, std, p50, p90, max float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	max = floats.Max(values)

	return mean, std, p50, p90, max
}

// States returns the animation states seen, sorted by name.
func (s RunSummary) States() []string {
	names := make([]string, 0, len(s.StateFrames))
	for name := range s.StateFrames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogValue implements slog.LogValuer for structured logging.
func (s RunSummary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("actions", s.Actions),
		slog.Int("anim_transitions", s.Transitions),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("height_min", s.HeightMin),
		slog.Float64("height_max", s.HeightMax),
		slog.Float64("distance", s.Distance),
		slog.Uint64("replication_dropped", s.Dropped),
	}
	for _, name := range s.States() {
		attrs = append(attrs, slog.Int("frames_"+name, s.StateFrames[name]))
	}
	return slog.GroupValue(attrs...)
}
