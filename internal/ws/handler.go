package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/adastrum/photogate/internal/domain"
)

// PhotoValidator is the pipeline surface the stream handler calls.
type PhotoValidator interface {
	ValidateBase64(ctx context.Context, payload string, mode domain.Mode) (*domain.Result, error)
}

// frame is one inbound message. Clients may also send the bare base64
// string, without the JSON wrapper.
type frame struct {
	Image string `json:"image"`
}

// errorReply mirrors the HTTP error envelope so clients handle both
// transports the same way.
type errorReply struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Handler upgrades the connection and serves the frame/reply loop. Each
// frame is validated in stream mode; replies carry landmarks and guidance.
func Handler(validator PhotoValidator, registry *Registry, logger *slog.Logger) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		registry.add(c)
		defer func() {
			registry.remove(c)
			_ = c.Close()
		}()

		for {
			msgType, payload, err := c.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			reply := handleFrame(validator, payload)
			if err := c.WriteMessage(websocket.TextMessage, reply); err != nil {
				logger.Debug("stream write failed", slog.Any("error", err))
				return
			}
		}
	})
}

func handleFrame(validator PhotoValidator, payload []byte) []byte {
	image := string(payload)
	var f frame
	if err := json.Unmarshal(payload, &f); err == nil && f.Image != "" {
		image = f.Image
	}

	result, err := validator.ValidateBase64(context.Background(), image, domain.ModeStream)
	if err != nil {
		return marshalError(err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return marshalError(domain.ErrInternal.WithError(err))
	}
	return out
}

func marshalError(err error) []byte {
	var reply errorReply
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		reply.Error.Code = appErr.Code
		reply.Error.Message = appErr.Message
	} else {
		reply.Error.Code = domain.ErrInternal.Code
		reply.Error.Message = domain.ErrInternal.Message
	}

	out, _ := json.Marshal(reply)
	return out
}

// UpgradeMiddleware rejects plain HTTP requests to the stream endpoint.
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
