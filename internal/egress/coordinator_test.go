package egress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openroom/backend/internal/models"
	"github.com/openroom/backend/pkg/apperr"
)

// fakeClient is a stateful in-memory stand-in for the egress service.
type fakeClient struct {
	active  map[string]*Job
	started []string // output key templates submitted
	listErr error
	callErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{active: make(map[string]*Job)}
}

func (f *fakeClient) ListActive(_ context.Context, roomName string) (*Job, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.active[roomName], nil
}

func (f *fakeClient) StartRoomComposite(_ context.Context, roomName, outputKey string) (*Job, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	f.started = append(f.started, outputKey)
	job := &Job{EgressID: "EG_" + roomName, RoomName: roomName, State: models.JobStateActive}
	f.active[roomName] = job
	return job, nil
}

func (f *fakeClient) Stop(_ context.Context, egressID string) (*Job, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	for room, job := range f.active {
		if job.EgressID == egressID {
			delete(f.active, room)
			return &Job{
				EgressID: egressID,
				RoomName: room,
				State:    models.JobStateStopping,
				Filename: "recordings/" + room + "-RM_x-1712000000.mp4",
			}, nil
		}
	}
	return nil, errors.New("egress not found")
}

func TestStartRecording(t *testing.T) {
	client := newFakeClient()
	co := NewCoordinator(client, "recordings/", nil)

	err := co.Start(context.Background(), "room1")
	require.NoError(t, err)
	require.Len(t, client.started, 1)
	assert.Equal(t, "recordings/room1-{room_id}-{time}", client.started[0])
}

func TestStartRecordingConflict(t *testing.T) {
	client := newFakeClient()
	co := NewCoordinator(client, "recordings/", nil)

	require.NoError(t, co.Start(context.Background(), "room1"))
	err := co.Start(context.Background(), "room1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Len(t, client.started, 1)
}

func TestStartRecordingValidation(t *testing.T) {
	co := NewCoordinator(newFakeClient(), "recordings/", nil)
	err := co.Start(context.Background(), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestStartRecordingUpstreamFailure(t *testing.T) {
	client := newFakeClient()
	client.callErr = errors.New("egress unavailable")
	co := NewCoordinator(client, "recordings/", nil)

	err := co.Start(context.Background(), "room1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestStopRecording(t *testing.T) {
	client := newFakeClient()
	co := NewCoordinator(client, "recordings/", nil)

	require.NoError(t, co.Start(context.Background(), "room1"))
	summary, err := co.Stop(context.Background(), "room1")
	require.NoError(t, err)
	assert.Equal(t, "EG_room1", summary.ID)
	// Name is the last path segment of the finalized filename.
	assert.Equal(t, "room1-RM_x-1712000000.mp4", summary.Name)

	// The read-then-act re-query now sees no active job.
	_, err = co.Stop(context.Background(), "room1")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestStopRecordingNotActive(t *testing.T) {
	co := NewCoordinator(newFakeClient(), "recordings/", nil)
	_, err := co.Stop(context.Background(), "room1")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestStopRecordingListFailure(t *testing.T) {
	client := newFakeClient()
	client.listErr = errors.New("egress unavailable")
	co := NewCoordinator(client, "recordings/", nil)

	_, err := co.Stop(context.Background(), "room1")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

// staleListClient reports no active job regardless of state, modeling the
// window where a submitted job is not yet visible in the service's listing.
type staleListClient struct{ fakeClient }

func (s *staleListClient) ListActive(context.Context, string) (*Job, error) { return nil, nil }

// TestConcurrentStartKnownRace pins the unresolved double-start race: two
// start calls that both observe "no active job" both submit. The upstream
// design has no lock for this window and neither does this coordinator.
func TestConcurrentStartKnownRace(t *testing.T) {
	client := &staleListClient{fakeClient: *newFakeClient()}
	co := NewCoordinator(client, "recordings/", nil)

	require.NoError(t, co.Start(context.Background(), "room1"))
	require.NoError(t, co.Start(context.Background(), "room1"))
	assert.Len(t, client.started, 2, "both starts pass the check; known gap, not a regression")
}
