package recordings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/openroom/backend/internal/models"
)

// WebhookHandler receives job lifecycle events from the egress service. The
// events are observational: the egress service writes the final media and
// sidecar blobs itself, so nothing is persisted here.
type WebhookHandler struct {
	provider auth.KeyProvider
	logger   *zap.Logger
}

// NewWebhookHandler creates a webhook handler verifying signatures with the
// egress service's key pair.
func NewWebhookHandler(apiKey, apiSecret string, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{
		provider: auth.NewSimpleKeyProvider(apiKey, apiSecret),
		logger:   logger,
	}
}

// Receive handles POST /livekit/webhook. The Authorization header carries a
// signed token over the body; an unverifiable request is rejected with 401.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if c.GetHeader("Authorization") == "" {
		c.String(http.StatusUnauthorized, "Authorization header is required")
		return
	}

	data, err := webhook.Receive(c.Request, h.provider)
	if err != nil {
		h.logger.Warn("webhook verification failed", zap.Error(err))
		c.String(http.StatusUnauthorized, "Authorization header is not valid")
		return
	}

	var event livekit.WebhookEvent
	if err := protojson.Unmarshal(data, &event); err != nil {
		h.logger.Warn("webhook decode failed", zap.Error(err))
		c.String(http.StatusUnauthorized, "Authorization header is not valid")
		return
	}

	fields := []zap.Field{zap.String("event", event.Event)}
	if info := event.EgressInfo; info != nil {
		fields = append(fields,
			zap.String("egress_id", info.EgressId),
			zap.String("room_name", info.RoomName),
			zap.String("state", string(models.StateFromEgress(info.Status))),
		)
	}
	h.logger.Info("egress webhook received", fields...)
	c.String(http.StatusOK, "ok")
}
