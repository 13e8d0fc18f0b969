package models

import (
	"fmt"
	"path"
	"strings"

	"github.com/livekit/protocol/livekit"
)

// JobState is the lifecycle of an egress job as seen by this service. No
// state is stored locally; it is always derived from the egress service.
type JobState string

const (
	JobStateRequested JobState = "requested"
	JobStateActive    JobState = "active"
	JobStateStopping  JobState = "stopping"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// StateFromEgress maps the egress service's status enum to a JobState.
// Aborted and limit-reached jobs count as failed.
func StateFromEgress(status livekit.EgressStatus) JobState {
	switch status {
	case livekit.EgressStatus_EGRESS_STARTING:
		return JobStateRequested
	case livekit.EgressStatus_EGRESS_ACTIVE:
		return JobStateActive
	case livekit.EgressStatus_EGRESS_ENDING:
		return JobStateStopping
	case livekit.EgressStatus_EGRESS_COMPLETE:
		return JobStateCompleted
	default:
		return JobStateFailed
	}
}

// Recording is the wire shape of a finished recording. RoomID carries the
// room-instance id; the field name is the external service's and is part of
// the API contract. StartedAt is epoch seconds.
type Recording struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	RoomName  string  `json:"roomName"`
	RoomID    string  `json:"roomId"`
	StartedAt float64 `json:"startedAt"`
	Size      int64   `json:"size"`
}

// Sidecar is the JSON metadata blob the egress service writes next to each
// media object. StartedAt is microseconds since epoch, as reported upstream.
type Sidecar struct {
	EgressID  string `json:"egress_id"`
	RoomName  string `json:"room_name"`
	RoomID    string `json:"room_id"`
	StartedAt int64  `json:"started_at"`
}

// Validate treats a missing or zero required field as a parse failure, so
// malformed sidecars are dropped from listings instead of surfacing partial
// records.
func (s Sidecar) Validate() error {
	switch {
	case s.EgressID == "":
		return fmt.Errorf("sidecar missing egress_id")
	case s.RoomName == "":
		return fmt.Errorf("sidecar missing room_name")
	case s.RoomID == "":
		return fmt.Errorf("sidecar missing room_id")
	case s.StartedAt == 0:
		return fmt.Errorf("sidecar missing started_at")
	}
	return nil
}

// Recording projects the sidecar onto the wire model. mediaKey is the
// sidecar key with the ".json" suffix stripped; size comes from the blob
// store's head metadata.
func (s Sidecar) Recording(mediaKey string, size int64) Recording {
	return Recording{
		ID:        s.EgressID,
		Name:      path.Base(mediaKey),
		RoomName:  s.RoomName,
		RoomID:    s.RoomID,
		StartedAt: float64(s.StartedAt) / 1_000_000,
		Size:      size,
	}
}

// MediaKeyFor strips the sidecar suffix from a sidecar key.
func MediaKeyFor(sidecarKey string) string {
	return strings.TrimSuffix(sidecarKey, ".json")
}

// ThumbnailName derives the thumbnail object name from a media name:
// "<basename>_thumbnail.jpg".
func ThumbnailName(mediaName string) string {
	base := strings.TrimSuffix(mediaName, path.Ext(mediaName))
	return base + "_thumbnail.jpg"
}
