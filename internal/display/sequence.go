package display

import "time"

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseCountdown Phase = "countdown"
	PhaseVideo     Phase = "video"
	PhaseHighlight Phase = "highlight"
	PhaseDone      Phase = "done"
)

// Sequence is the timing of one overlay: countdown, then video, then the
// price highlight.
type Sequence struct {
	Countdown time.Duration
	Video     time.Duration
	Highlight time.Duration
}

func (s Sequence) Total() time.Duration {
	return s.Countdown + s.Video + s.Highlight
}

// PhaseAt returns the phase active after elapsed and the time left in it.
// Zero-length phases are skipped. A negative elapsed is pending.
func (s Sequence) PhaseAt(elapsed time.Duration) (Phase, time.Duration) {
	if elapsed < 0 {
		return PhasePending, -elapsed
	}
	steps := []struct {
		phase Phase
		d     time.Duration
	}{
		{PhaseCountdown, s.Countdown},
		{PhaseVideo, s.Video},
		{PhaseHighlight, s.Highlight},
	}
	for _, st := range steps {
		if st.d <= 0 {
			continue
		}
		if elapsed < st.d {
			return st.phase, st.d - elapsed
		}
		elapsed -= st.d
	}
	return PhaseDone, 0
}
