package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
	"chat-relay/sink"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The token in the handshake is the access control; origins
		// are not restricted here.
		return true
	},
}

// SocketController owns the realtime endpoint. Each accepted socket
// becomes one registered session with a bounded delivery queue; all
// socket writes go through a single write loop, since gorilla
// connections allow one concurrent writer only.
type SocketController struct {
	log           *slog.Logger
	chat          services.IChatService
	queueCapacity int
}

func NewSocketController(log *slog.Logger, chat services.IChatService, queueCapacity int) *SocketController {
	return &SocketController{log: log, chat: chat, queueCapacity: queueCapacity}
}

func (sc *SocketController) Handle(c *gin.Context) {
	identity := currentIdentity(c)
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sc.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	queue := sink.NewQueueSink(sc.queueCapacity)
	token := sc.chat.Connect(identity, queue)
	sc.log.Debug("session connected", "user_id", identity.ID)

	// Rejections are reported to this connection only; they ride the
	// same write loop as fanned-out events.
	rejections := make(chan frameError, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		sc.writeLoop(ws, queue, rejections)
	}()

	sc.readLoop(c.Request.Context(), ws, token, identity, rejections)

	// Every exit path of the read loop funnels through here, so a
	// network drop cleans up exactly like a deliberate close.
	sc.chat.Disconnect(token)
	_ = ws.Close()
	<-writerDone
	sc.log.Debug("session disconnected", "user_id", identity.ID)
}

func (sc *SocketController) readLoop(ctx context.Context, ws *websocket.Conn,
	token string, identity domain.UserIdentity, rejections chan<- frameError) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err = json.Unmarshal(data, &frame); err != nil {
			sc.reject(rejections, errors.ValidationError{Err: err})
			continue
		}
		if err = validateFrame.Struct(frame); err != nil {
			sc.reject(rejections, errors.ValidationError{Err: err})
			continue
		}
		if err = sc.handleFrame(ctx, token, identity, frame); err != nil {
			sc.reject(rejections, err)
		}
	}
}

func (sc *SocketController) handleFrame(ctx context.Context, token string,
	identity domain.UserIdentity, frame inboundFrame) error {
	switch frame.Event {
	case "join":
		// The payload may name a user id for protocol compatibility,
		// but only the session's own inbox can ever be joined.
		if frame.UserID != "" && frame.UserID != identity.ID {
			return errors.AuthorizationError{Err: errors.ErrForeignChannel}
		}
		return sc.chat.JoinPrivate(token)
	case "join-group":
		if frame.GroupID == "" {
			return errors.ValidationError{Err: errors.ErrUnknownGroup}
		}
		return sc.chat.JoinGroup(token, frame.GroupID)
	case "message":
		_, err := sc.chat.Send(ctx, token, services.SendRequest{
			RecipientID: frame.To,
			Content:     frame.Content,
		})
		return err
	case "group-message":
		_, err := sc.chat.Send(ctx, token, services.SendRequest{
			GroupID: frame.Group,
			Content: frame.Content,
		})
		return err
	}
	return nil
}

func (sc *SocketController) reject(rejections chan<- frameError, err error) {
	select {
	case rejections <- toFrameError(err):
	default:
		sc.log.Debug("rejection frame dropped, channel full")
	}
}

// writeLoop is the only goroutine writing to the socket. It drains the
// session's delivery queue, pushes rejection frames, keeps the
// connection alive with pings and ends when the queue is closed (any
// disconnect path) or a write fails.
func (sc *SocketController) writeLoop(ws *websocket.Conn, queue *sink.QueueSink, rejections <-chan frameError) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-queue.Closed():
			deadline := time.Now().Add(writeWait)
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "disconnected"), deadline)
			_ = ws.Close()
			return
		case evt := <-queue.Events:
			frame, ok := toFrame(evt)
			if !ok {
				continue
			}
			if err := sc.writeFrame(ws, frame); err != nil {
				return
			}
		case rejection := <-rejections:
			frame := outboundFrame{Event: "error", Error: &rejection}
			if err := sc.writeFrame(ws, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (sc *SocketController) writeFrame(ws *websocket.Conn, frame outboundFrame) error {
	if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return ws.WriteJSON(frame)
}
