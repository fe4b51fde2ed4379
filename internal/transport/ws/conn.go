package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/http/middleware/identity"
	"courier-dispatch/internal/logx"
)

type conn struct {
	hub    *Hub
	ws     *websocket.Conn
	actor  identity.Actor
	send   chan outbound
	ctx    context.Context
	cancel context.CancelFunc
	logger logx.Logger

	mu    sync.Mutex
	rooms map[domain.Audience]func()
	once  sync.Once
}

// join subscribes the connection to target. Joining twice is a no-op.
func (c *conn) join(target domain.Audience) error {
	c.mu.Lock()
	_, joined := c.rooms[target]
	c.mu.Unlock()
	if joined {
		return nil
	}

	sub, err := c.hub.events.Subscribe(c.ctx, target, c.enqueue)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, joined := c.rooms[target]; joined || c.ctx.Err() != nil {
		sub.Close()
		return nil
	}
	c.rooms[target] = sub.Close
	return nil
}

// enqueue is the subscription handler. It blocks while the writer is behind,
// so a slow client backs up into the subscription queue.
func (c *conn) enqueue(ctx context.Context, ev domain.NotificationEvent) error {
	select {
	case c.send <- eventMessage(ev):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

func (c *conn) reply(msg outbound) {
	select {
	case c.send <- msg:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("ws reply dropped", logx.String("type", msg.Type))
	}
}

func (c *conn) shutdown() {
	c.once.Do(func() {
		c.cancel()
		c.mu.Lock()
		rooms := c.rooms
		c.rooms = map[domain.Audience]func(){}
		c.mu.Unlock()
		for _, closeSub := range rooms {
			closeSub()
		}
		c.hub.remove(c)
		_ = c.ws.Close()
	})
}

func (c *conn) readPump() {
	defer c.shutdown()

	cfg := c.hub.cfg
	c.ws.SetReadLimit(cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("ws read failed", logx.Err(err))
			}
			return
		}
		c.handle(data)
	}
}

func (c *conn) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(cfg.WriteWait))
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Debug("ws write failed", logx.Err(err))
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *conn) handle(data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(errorMessage("", "malformed message"))
		return
	}

	switch msg.Type {
	case MsgLocationUpdate:
		c.updateLocation(msg)
	case MsgAck:
		if err := c.hub.svc.AckNotification(c.ctx, c.actor.Audience(), msg.ID); err != nil {
			c.reply(errorMessage(msg.Type, errorText(err)))
		}
	case MsgJoinOrder:
		c.joinOrder(msg)
	default:
		c.reply(errorMessage(msg.Type, "unknown message type"))
	}
}

func (c *conn) updateLocation(msg inbound) {
	if c.actor.Kind != domain.AudienceAgent {
		c.reply(errorMessage(msg.Type, "forbidden"))
		return
	}
	applied, err := c.hub.svc.UpdateLocation(c.ctx, c.actor.ID, domain.Point{Lat: msg.Lat, Lng: msg.Lng}, msg.Timestamp)
	if err != nil {
		c.reply(errorMessage(msg.Type, errorText(err)))
		return
	}
	c.reply(outbound{Type: MsgLocationResult, Applied: &applied})
}

func (c *conn) joinOrder(msg inbound) {
	o, err := c.hub.svc.WatchOrder(c.ctx, c.actor.Audience(), msg.OrderID)
	if err != nil {
		c.reply(errorMessage(msg.Type, errorText(err)))
		return
	}
	if err := c.join(domain.OrderAudience(o.ID)); err != nil {
		c.logger.Error("join order room", logx.String("order_id", o.ID), logx.Err(err))
		c.reply(errorMessage(msg.Type, errorText(err)))
		return
	}
	c.reply(outbound{Type: MsgJoined, OrderID: o.ID})
}
