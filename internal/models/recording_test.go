package models

import (
	"testing"

	"github.com/livekit/protocol/livekit"
	"github.com/stretchr/testify/assert"
)

func TestSidecarValidate(t *testing.T) {
	valid := Sidecar{EgressID: "EG_1", RoomName: "room1", RoomID: "RM_1", StartedAt: 1}
	assert.NoError(t, valid.Validate())

	cases := map[string]Sidecar{
		"egress_id":  {RoomName: "room1", RoomID: "RM_1", StartedAt: 1},
		"room_name":  {EgressID: "EG_1", RoomID: "RM_1", StartedAt: 1},
		"room_id":    {EgressID: "EG_1", RoomName: "room1", StartedAt: 1},
		"started_at": {EgressID: "EG_1", RoomName: "room1", RoomID: "RM_1"},
	}
	for field, sc := range cases {
		err := sc.Validate()
		assert.Error(t, err, field)
		assert.Contains(t, err.Error(), field)
	}
}

func TestSidecarRecording(t *testing.T) {
	sc := Sidecar{EgressID: "EG_1", RoomName: "room1", RoomID: "RM_1", StartedAt: 1_500_000}
	rec := sc.Recording("recordings/room1-RM_1-99.mp4", 1234)

	assert.Equal(t, "EG_1", rec.ID)
	assert.Equal(t, "room1-RM_1-99.mp4", rec.Name)
	assert.Equal(t, 1.5, rec.StartedAt)
	assert.Equal(t, int64(1234), rec.Size)
}

func TestMediaKeyFor(t *testing.T) {
	assert.Equal(t, "recordings/a.mp4", MediaKeyFor("recordings/a.mp4.json"))
	assert.Equal(t, "recordings/a.mp4", MediaKeyFor("recordings/a.mp4"))
}

func TestThumbnailName(t *testing.T) {
	assert.Equal(t, "room1-RM_1-99_thumbnail.jpg", ThumbnailName("room1-RM_1-99.mp4"))
}

func TestStateFromEgress(t *testing.T) {
	assert.Equal(t, JobStateRequested, StateFromEgress(livekit.EgressStatus_EGRESS_STARTING))
	assert.Equal(t, JobStateActive, StateFromEgress(livekit.EgressStatus_EGRESS_ACTIVE))
	assert.Equal(t, JobStateStopping, StateFromEgress(livekit.EgressStatus_EGRESS_ENDING))
	assert.Equal(t, JobStateCompleted, StateFromEgress(livekit.EgressStatus_EGRESS_COMPLETE))
	assert.Equal(t, JobStateFailed, StateFromEgress(livekit.EgressStatus_EGRESS_FAILED))
	assert.Equal(t, JobStateFailed, StateFromEgress(livekit.EgressStatus_EGRESS_ABORTED))
}
