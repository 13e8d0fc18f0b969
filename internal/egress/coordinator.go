package egress

import (
	"context"
	"path"

	"go.uber.org/zap"

	"github.com/openroom/backend/pkg/apperr"
)

// Summary is the stop result returned to API callers.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Coordinator enforces at most one active recording per room and maps egress
// job completion into the storage key layout. Every active-job check goes to
// the egress service live: two concurrent Start calls for the same room can
// both observe "no active job" and both submit. That race exists in the
// upstream design and is deliberately not papered over with a lock here.
type Coordinator struct {
	client Client
	prefix string
	logger *zap.Logger
}

// NewCoordinator creates a coordinator writing media under prefix.
func NewCoordinator(client Client, prefix string, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{client: client, prefix: prefix, logger: logger}
}

// Start begins a composite recording for the room. The output key template
// "{prefix}{roomName}-{room_id}-{time}" leaves the instance-id and time
// tokens to the egress service, which resolves them at finalization.
func (co *Coordinator) Start(ctx context.Context, roomName string) error {
	if roomName == "" {
		return apperr.Validation("roomName is required")
	}
	active, err := co.client.ListActive(ctx, roomName)
	if err != nil {
		return apperr.Upstream("Error starting recording", err)
	}
	if active != nil {
		return apperr.Conflict("Recording already started for this room")
	}

	outputKey := co.prefix + roomName + "-{room_id}-{time}"
	job, err := co.client.StartRoomComposite(ctx, roomName, outputKey)
	if err != nil {
		co.logger.Error("start recording failed", zap.Error(err), zap.String("room_name", roomName))
		return apperr.Upstream("Error starting recording", err)
	}
	co.logger.Info("recording started",
		zap.String("room_name", roomName),
		zap.String("egress_id", job.EgressID),
		zap.String("state", string(job.State)),
	)
	return nil
}

// Stop ends the room's active recording. The active job is re-queried first
// (read-then-act); the discovered egress id keys the stop request. The
// egress service writes the final media and sidecar blobs, not this service.
func (co *Coordinator) Stop(ctx context.Context, roomName string) (*Summary, error) {
	if roomName == "" {
		return nil, apperr.Validation("roomName is required")
	}
	active, err := co.client.ListActive(ctx, roomName)
	if err != nil {
		return nil, apperr.Upstream("Error stopping recording", err)
	}
	if active == nil {
		return nil, apperr.Conflict("Recording not started for this room")
	}

	job, err := co.client.Stop(ctx, active.EgressID)
	if err != nil {
		co.logger.Error("stop recording failed", zap.Error(err),
			zap.String("room_name", roomName),
			zap.String("egress_id", active.EgressID),
		)
		return nil, apperr.Upstream("Error stopping recording", err)
	}
	co.logger.Info("recording stopped",
		zap.String("room_name", roomName),
		zap.String("egress_id", job.EgressID),
	)
	return &Summary{ID: job.EgressID, Name: path.Base(job.Filename)}, nil
}
