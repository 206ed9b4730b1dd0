package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/avatar/config"
)

func TestCollectorSamplesEveryN(t *testing.T) {
	c := NewCollector(5, 0.5)
	kept := 0
	for f := 0; f < 20; f++ {
		if c.Record(TraceRow{Frame: f, ClientAnim: "Stand"}) {
			kept++
		}
	}
	if kept != 4 {
		t.Errorf("kept %d rows, want 4", kept)
	}

	rows := c.Flush()
	if len(rows) != 4 || rows[1].Frame != 5 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if rows[1].SimTimeSec != 2.5 {
		t.Errorf("sim time = %v, want 2.5", rows[1].SimTimeSec)
	}
	if len(c.Rows()) != 0 {
		t.Error("Flush should clear kept rows")
	}
	if s := c.Summary(0); s.Frames != 20 {
		t.Errorf("summary frames = %d, want 20 after flush", s.Frames)
	}
}

func TestCollectorSummary(t *testing.T) {
	c := NewCollector(1, 1.0/60)
	anims := []string{"Stand", "Walk", "Walk", "Walk", "Stand"}
	for f, a := range anims {
		c.Record(TraceRow{
			Frame:      f,
			PosX:       float64(f) * 3,
			PosY:       float64(f) * 4,
			PosZ:       1.2 + float64(f)*0.1,
			VelX:       3,
			VelY:       4,
			ClientAnim: a,
			Actions:    1,
		})
	}

	s := c.Summary(2)
	if s.Transitions != 2 {
		t.Errorf("transitions = %d, want 2", s.Transitions)
	}
	if s.Actions != 5 {
		t.Errorf("actions = %d, want 5", s.Actions)
	}
	if math.Abs(s.Distance-20) > 1e-9 {
		t.Errorf("distance = %v, want 20", s.Distance)
	}
	if s.SpeedMean != 5 || s.SpeedMax != 5 || s.SpeedStd != 0 {
		t.Errorf("speed mean/max/std = %v/%v/%v, want 5/5/0", s.SpeedMean, s.SpeedMax, s.SpeedStd)
	}
	if math.Abs(s.HeightMin-1.2) > 1e-9 || math.Abs(s.HeightMax-1.6) > 1e-9 {
		t.Errorf("height range = %v..%v, want 1.2..1.6", s.HeightMin, s.HeightMax)
	}
	if s.StateFrames["Walk"] != 3 || s.StateFrames["Stand"] != 2 {
		t.Errorf("state frames = %v", s.StateFrames)
	}
	if s.Dropped != 2 {
		t.Errorf("dropped = %d, want 2", s.Dropped)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager for empty dir, got %v, %v", om, err)
	}
	if err := om.WriteTrace([]TraceRow{{Frame: 1}}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.WriteTrace([]TraceRow{{Frame: 0, ClientAnim: "Stand"}}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteTrace([]TraceRow{{Frame: 10, ClientAnim: "Walk"}}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteSummary(RunSummary{Frames: 11}); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "trace.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "frame,"); n != 1 {
		t.Errorf("expected one header line, found %d", n)
	}

	var rows []TraceRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1].ClientAnim != "Walk" {
		t.Errorf("unexpected trace rows: %+v", rows)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "summary.csv")); err != nil {
		t.Errorf("summary.csv missing: %v", err)
	}
}
