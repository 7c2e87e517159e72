package sim

import (
	"context"
	"time"

	"github.com/mhansen/ingresslapse"
)

// Frame is one emitted snapshot during replay, tagged with the simulated
// wall-clock time it represents.
type Frame struct {
	At       time.Time
	Snapshot StateSnapshot
}

// ReplayOptions configures a replay run.
type ReplayOptions struct {
	// RecordingStart is the earliest time a frame may be emitted; actions
	// before it are still applied to build up state, but silently.
	RecordingStart time.Time

	// StepSeconds selects time-stepped mode when > 0. Per-action mode is
	// used when it is zero.
	StepSeconds int
}

// Replay drives actions (assumed already ordered by timestamp ascending)
// through the simulator. In per-action mode it emits a Frame for each action
// at or after RecordingStart that produces a visible change; in time-stepped
// mode it emits a Frame for every step at or after RecordingStart, whether
// or not that step changed anything. The caller
// retrieves emitted frames from the returned channel and should drain it
// to completion or cancel ctx.
func Replay(ctx context.Context, s *Simulator, actions []ingresslapse.Action, opts ReplayOptions) <-chan Frame {
	out := make(chan Frame)
	go func() {
		defer close(out)
		if opts.StepSeconds > 0 {
			replayTimeStepped(ctx, s, actions, opts, out)
		} else {
			replayPerAction(ctx, s, actions, opts, out)
		}
	}()
	return out
}

func replayPerAction(ctx context.Context, s *Simulator, actions []ingresslapse.Action, opts ReplayOptions, out chan<- Frame) {
	for _, a := range actions {
		select {
		case <-ctx.Done():
			return
		default:
		}

		changed := s.ProcessAction(a)
		at := time.UnixMilli(a.TimestampMs).UTC()
		if changed && !at.Before(opts.RecordingStart) {
			select {
			case out <- Frame{At: at, Snapshot: s.Snapshot()}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func replayTimeStepped(ctx context.Context, s *Simulator, actions []ingresslapse.Action, opts ReplayOptions, out chan<- Frame) {
	if len(actions) == 0 {
		return
	}
	step := time.Duration(opts.StepSeconds) * time.Second
	start := time.UnixMilli(actions[0].TimestampMs).UTC()
	end := time.UnixMilli(actions[len(actions)-1].TimestampMs).UTC()

	idx := 0
	for t := start; !t.After(end); t = t.Add(step) {
		select {
		case <-ctx.Done():
			return
		default:
		}

		for idx < len(actions) && !time.UnixMilli(actions[idx].TimestampMs).UTC().After(t) {
			s.ProcessAction(actions[idx])
			idx++
		}

		if !t.Before(opts.RecordingStart) {
			select {
			case out <- Frame{At: t, Snapshot: s.Snapshot()}:
			case <-ctx.Done():
				return
			}
		}
	}
}
