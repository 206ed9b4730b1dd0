package game

import (
	"github.com/pthm-cable/avatar/anim"
	"github.com/pthm-cable/avatar/telemetry"
)

// traceFlushRows is how many kept rows accumulate before they are written.
const traceFlushRows = 256

// recordTelemetry samples both sides into a trace row.
func (g *Game) recordTelemetry(actions int) {
	row := telemetry.TraceRow{
		Frame:   g.frame,
		Actions: actions,
	}

	if ent := g.server.Entity(g.cfg.Scene.AvatarName); ent != nil {
		t := ent.Placeable().Transform()
		v := ent.RigidBody().LinearVelocity()
		row.PosX, row.PosY, row.PosZ = float64(t.Pos.X()), float64(t.Pos.Y()), float64(t.Pos.Z())
		row.VelX, row.VelY, row.VelZ = float64(v.X()), float64(v.Y()), float64(v.Z())
		row.Yaw = float64(t.Yaw())
		row.Roll = float64(t.Rot.X())
		row.ServerAnim = ent.AnimationController().AnimationState()
	}
	flight := g.auth.Flight()
	row.Flying, row.Falling = flight.Flying, flight.Falling

	if ent := g.client.Entity(g.cfg.Scene.AvatarName); ent != nil {
		row.ClientAnim = ent.AnimationController().AnimationState()
		if body := ent.RigidBody(); body != nil && anim.ParseName(row.ClientAnim) == anim.Walk {
			row.WalkSpeed = float64(anim.WalkSpeed(body.LinearVelocity(), float32(g.cfg.Animation.WalkAnimSpeed)))
		}
	}

	if rig := g.viewer.Rig(); rig != nil {
		row.CameraDistance = float64(rig.Distance())
		row.Tripod = rig.Tripod()
		row.InputEnabled = rig.Active()
	}

	g.collector.Record(row)
	if len(g.collector.Rows()) >= traceFlushRows {
		if err := g.flushTelemetry(); err != nil {
			g.log.Error("failed to write trace", "error", err)
		}
	}
}

// flushTelemetry writes kept trace rows.
func (g *Game) flushTelemetry() error {
	rows := g.collector.Flush()
	return g.outputManager.WriteTrace(rows)
}

// Summary returns statistics over every frame run so far.
func (g *Game) Summary() telemetry.RunSummary {
	_, dropped := g.boundary.Stats()
	return g.collector.Summary(dropped)
}
