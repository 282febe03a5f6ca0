package server

import (
	"context"
	"net/http"
	"wa-gateway/domain/event"
	"wa-gateway/sink"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// realtime streams lifecycle events to one observer. The channel is server
// to client only: anything the client sends is discarded.
// It blocks until the client leaves, a write fails or the observer is evicted.
func (h *Handler) realtime(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.config.OriginPatterns,
	})
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	handle := uuid.NewString()
	queue := sink.NewQueueSink(h.config.ConnectionBufferSize)
	ctx := conn.CloseRead(r.Context())

	h.bridge.Attach(ctx, handle, queue)
	defer h.bridge.Detach(handle)
	defer func() { _ = queue.Close() }()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("Observer left", "handle", handle)
			return
		case <-queue.Done():
			h.log.Warn("Observer evicted", "handle", handle)
			_ = conn.Close(websocket.StatusPolicyViolation, "observer too slow")
			return
		case e := <-queue.Events():
			if err := h.write(ctx, conn, e); err != nil {
				h.log.Error("failed to push event to observer", "handle", handle, "error", err)
				return
			}
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, e event.LifecycleEvent) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.WriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, event.ToFrame(e))
}
