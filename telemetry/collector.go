package telemetry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Collector samples trace rows and accumulates run statistics.
type Collector struct {
	every int
	dt    float32

	rows []TraceRow

	speeds  []float64
	heights []float64

	frames      int
	actions     int
	transitions int
	distance    float64
	lastAnim    string
	lastX       float64
	lastY       float64
	hasLast     bool
	stateFrames map[string]int
}

// NewCollector creates a new collector.
// every: keep one trace row every N frames (values below 1 keep every frame)
// dt: seconds per frame (used for frame-to-time conversion)
func NewCollector(every int, dt float32) *Collector {
	if every < 1 {
		every = 1
	}
	return &Collector{
		every:       every,
		dt:          dt,
		stateFrames: make(map[string]int),
	}
}

// Record accounts for one frame. Returns true if the row was kept for the trace.
func (c *Collector) Record(row TraceRow) bool {
	c.frames++
	c.actions += row.Actions

	row.SimTimeSec = float64(row.Frame) * float64(c.dt)
	row.Speed = math.Hypot(row.VelX, row.VelY)

	c.speeds = append(c.speeds, row.Speed)
	c.heights = append(c.heights, row.PosZ)
	c.stateFrames[row.ClientAnim]++

	if c.hasLast {
		c.distance += math.Hypot(row.PosX-c.lastX, row.PosY-c.lastY)
		if row.ClientAnim != c.lastAnim {
			c.transitions++
		}
	}
	c.lastX, c.lastY, c.lastAnim = row.PosX, row.PosY, row.ClientAnim
	c.hasLast = true

	if row.Frame%c.every != 0 {
		return false
	}
	c.rows = append(c.rows, row)
	return true
}

// Rows returns the trace rows kept so far.
func (c *Collector) Rows() []TraceRow {
	return c.rows
}

// Flush returns the kept rows and clears them. Run statistics are retained.
func (c *Collector) Flush() []TraceRow {
	rows := c.rows
	c.rows = nil
	return rows
}

// Summary computes statistics over every recorded frame.
func (c *Collector) Summary(dropped uint64) RunSummary {
	s := RunSummary{
		Frames:      c.frames,
		SimTimeSec:  float64(c.frames) * float64(c.dt),
		Actions:     c.actions,
		Transitions: c.transitions,
		Distance:    c.distance,
		Dropped:     dropped,
		StateFrames: make(map[string]int, len(c.stateFrames)),
	}
	for k, v := range c.stateFrames {
		s.StateFrames[k] = v
	}

	s.SpeedMean, s.SpeedStd, s.SpeedP50, s.SpeedP90, s.SpeedMax = ComputeSpeedStats(c.speeds)
	if len(c.heights) > 0 {
		s.HeightMin = floats.Min(c.heights)
		s.HeightMax = floats.Max(c.heights)
	}
	return s
}
