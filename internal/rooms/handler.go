// Package rooms issues media-plane access tokens for room admission.
package rooms

import (
	"github.com/gin-gonic/gin"
	"github.com/livekit/protocol/auth"
	"go.uber.org/zap"

	"github.com/openroom/backend/config"
	"github.com/openroom/backend/pkg/response"
)

// Handler mints room-join tokens against the media service's key pair.
type Handler struct {
	cfg    config.LiveKitConfig
	logger *zap.Logger
}

// NewHandler creates a rooms handler.
func NewHandler(cfg config.LiveKitConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{cfg: cfg, logger: logger}
}

type tokenRequest struct {
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName"`
}

// CreateToken handles POST /token. The token grants join access to one room
// for one participant identity; it is not user authentication.
func (h *Handler) CreateToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomName == "" || req.ParticipantName == "" {
		response.BadRequest(c, "roomName and participantName are required")
		return
	}

	at := auth.NewAccessToken(h.cfg.APIKey, h.cfg.APISecret)
	at.SetIdentity(req.ParticipantName)
	at.SetVideoGrant(&auth.VideoGrant{RoomJoin: true, Room: req.RoomName})
	token, err := at.ToJWT()
	if err != nil {
		h.logger.Error("token signing failed", zap.Error(err), zap.String("room_name", req.RoomName))
		response.Internal(c, "Error creating token")
		return
	}
	response.OK(c, gin.H{"serverUrl": h.cfg.URL, "token": token})
}
