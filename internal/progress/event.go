package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart  Stage = "RUN_START"
	StageRunDone   Stage = "RUN_DONE"
	StageRunError  Stage = "RUN_ERROR"
	StagePageStart Stage = "PAGE_START"
	StagePageDone  Stage = "PAGE_DONE"
	StagePageError Stage = "PAGE_ERROR"
)

// Event captures a single milestone of crawl progress.
type Event struct {
	// RunID uniquely identifies a crawl run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which run or page milestone occurred.
	Stage Stage
	// URL is the page address for page-scoped events.
	URL string
	// Depth is the frontier depth of the page, where applicable.
	Depth int
	// Bytes carries the size of the Markdown document produced.
	Bytes int64
	// Dur captures latency for page completions and the whole run.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError:
	case StagePageStart, StagePageDone, StagePageError:
		if e.URL == "" {
			return fmt.Errorf("%s requires a url", e.Stage)
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
