package shared

import (
	"net/http"
	"time"

	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/realtime"

	"github.com/gin-gonic/gin"
)

const defaultStreamHeartbeat = 25 * time.Second

// SSE 事件名
const (
	StreamEventSnapshot  = "snapshot"
	StreamEventHeartbeat = "heartbeat"
)

// OfferStream 优惠变更推送参数
type OfferStream struct {
	Hub       *realtime.Hub
	Cache     *realtime.OfferCache
	Filter    realtime.Filter
	Load      func() ([]models.Offer, error)
	Heartbeat time.Duration
}

// ServeOfferStream 以 SSE 推送快照与后续变更，客户端断开即退订
func ServeOfferStream(c *gin.Context, stream OfferStream) {
	if stream.Hub == nil || stream.Cache == nil {
		RespondError(c, response.CodeInternal, "error.stream_unavailable", nil)
		return
	}
	// 先订阅再加载快照，加载期间的事件留在订阅缓冲中
	sub, err := stream.Hub.Subscribe(stream.Filter)
	if err != nil {
		RespondError(c, response.CodeInternal, "error.stream_unavailable", err)
		return
	}
	defer stream.Hub.Unsubscribe(sub)

	if stream.Load != nil {
		offers, err := stream.Load()
		if err != nil {
			RespondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		stream.Cache.Reset(offers)
	}

	heartbeat := stream.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultStreamHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent(StreamEventSnapshot, stream.Cache.Snapshot())
	c.Writer.Flush()

	log := RequestLog(c)
	log.Debugw("offer_stream_opened", "scope", stream.Cache.Scope(), "subscription_id", sub.ID())
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debugw("offer_stream_closed", "subscription_id", sub.ID(), "dropped", sub.Dropped())
			return
		case event, ok := <-sub.C():
			if !ok {
				return
			}
			out, visible := stream.Cache.Project(event)
			if !visible {
				continue
			}
			c.SSEvent(string(out.Kind), out)
			c.Writer.Flush()
		case now := <-ticker.C:
			c.SSEvent(StreamEventHeartbeat, now.UTC().Unix())
			c.Writer.Flush()
		}
	}
}
