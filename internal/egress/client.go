// Package egress coordinates recording jobs with the external egress
// service. The service is the only source of truth for in-flight jobs; this
// package keeps no record of them.
package egress

import (
	"context"
	"fmt"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"go.uber.org/zap"

	"github.com/openroom/backend/internal/models"
)

// Job describes one egress job as reported by the service. StartedAt is
// microseconds since epoch; Filename is the finalized media path (empty
// until the service resolves it).
type Job struct {
	EgressID  string
	RoomName  string
	State     models.JobState
	StartedAt int64
	Filename  string
}

// Client is the subset of the egress service API the coordinator needs.
type Client interface {
	// ListActive returns the active job for the room, or nil when none.
	ListActive(ctx context.Context, roomName string) (*Job, error)
	// StartRoomComposite submits a composite egress writing an MP4 to the
	// given output key template.
	StartRoomComposite(ctx context.Context, roomName, outputKey string) (*Job, error)
	// Stop requests termination of the job and returns its file result.
	Stop(ctx context.Context, egressID string) (*Job, error)
}

// LiveKitClient implements Client against a LiveKit egress service.
type LiveKitClient struct {
	egress *lksdk.EgressClient
	logger *zap.Logger
}

var _ Client = (*LiveKitClient)(nil)

// NewLiveKitClient creates the shared egress client.
func NewLiveKitClient(url, apiKey, apiSecret string, logger *zap.Logger) *LiveKitClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveKitClient{
		egress: lksdk.NewEgressClient(url, apiKey, apiSecret),
		logger: logger,
	}
}

// ListActive queries the service live for an active egress on the room.
func (c *LiveKitClient) ListActive(ctx context.Context, roomName string) (*Job, error) {
	resp, err := c.egress.ListEgress(ctx, &livekit.ListEgressRequest{
		RoomName: roomName,
		Active:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("list egress for %s: %w", roomName, err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return jobFromInfo(resp.Items[0]), nil
}

// StartRoomComposite starts a room-composite egress with an MP4 file output.
func (c *LiveKitClient) StartRoomComposite(ctx context.Context, roomName, outputKey string) (*Job, error) {
	info, err := c.egress.StartRoomCompositeEgress(ctx, &livekit.RoomCompositeEgressRequest{
		RoomName: roomName,
		FileOutputs: []*livekit.EncodedFileOutput{{
			FileType: livekit.EncodedFileType_MP4,
			Filepath: outputKey,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("start room composite egress for %s: %w", roomName, err)
	}
	c.logger.Info("egress started",
		zap.String("egress_id", info.EgressId),
		zap.String("room_name", roomName),
	)
	return jobFromInfo(info), nil
}

// Stop terminates the egress job by id.
func (c *LiveKitClient) Stop(ctx context.Context, egressID string) (*Job, error) {
	info, err := c.egress.StopEgress(ctx, &livekit.StopEgressRequest{EgressId: egressID})
	if err != nil {
		return nil, fmt.Errorf("stop egress %s: %w", egressID, err)
	}
	c.logger.Info("egress stopped", zap.String("egress_id", egressID))
	return jobFromInfo(info), nil
}

func jobFromInfo(info *livekit.EgressInfo) *Job {
	job := &Job{
		EgressID:  info.EgressId,
		RoomName:  info.RoomName,
		State:     models.StateFromEgress(info.Status),
		StartedAt: info.StartedAt,
	}
	if len(info.FileResults) > 0 {
		job.Filename = info.FileResults[0].Filename
	}
	return job
}
