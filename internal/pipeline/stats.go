package pipeline

import (
	"sync/atomic"
	"time"
)

// Stats counts protocol events. Fields are updated from several goroutines.
type Stats struct {
	produced       atomic.Uint64
	played         atomic.Uint64
	starved        atomic.Uint64
	droppedVideo   atomic.Uint64
	displayStarved atomic.Uint64
	faults         atomic.Uint64
	lastProduction atomic.Int64
}

type Snapshot struct {
	FramesProduced uint64
	FramesPlayed   uint64
	// Starved counts frame requests that found no frame ready.
	Starved        uint64
	DroppedVideo   uint64
	DisplayStarved uint64
	Faults         uint64
	LastProduction time.Duration
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		FramesProduced: s.produced.Load(),
		FramesPlayed:   s.played.Load(),
		Starved:        s.starved.Load(),
		DroppedVideo:   s.droppedVideo.Load(),
		DisplayStarved: s.displayStarved.Load(),
		Faults:         s.faults.Load(),
		LastProduction: time.Duration(s.lastProduction.Load()),
	}
}
