package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 写超时
	writeWait = 5 * time.Second
	// 单帧入站消息上限
	maxMessageSize = 64 << 10
	// 默认心跳参数：pongWait 内收不到 pong 视为断线
	defaultPongWait   = 60 * time.Second
	defaultSendBuffer = 64
)

// ClientConn 负责发送（写）数据到客户端的轻量包装。
// Enqueue 与 Close 只在事件循环中调用。
type ClientConn struct {
	ws         *websocket.Conn
	send       chan []byte
	closed     bool
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewClientConn(ws *websocket.Conn, sendBuffer int, pongWait time.Duration) *ClientConn {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	return &ClientConn{
		ws:         ws,
		send:       make(chan []byte, sendBuffer),
		pongWait:   pongWait,
		pingPeriod: pongWait * 9 / 10,
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		// 慢连接丢消息，不阻塞事件循环
		return false
	}
}

// Close 关闭发送队列，写协程发出 close 帧后关闭底层连接
func (c *ClientConn) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期发送 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，按序投递给事件循环
func (c *ClientConn) readPump(hub *Hub, id PlayerID) {
	defer c.ws.Close()
	// 读泵退出时，通知事件循环移除该玩家
	defer func() { _ = hub.Leave(id) }()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Debugw("read error", "player", id, "err", err)
			}
			return
		}
		if err := hub.Inbound(id, payload); err != nil {
			return
		}
	}
}

// WSOptions WebSocket 接入参数
type WSOptions struct {
	SendBuffer  int
	PongWait    time.Duration
	CheckOrigin func(r *http.Request) bool
}

// WSHandler 接入层：升级连接，分配身份，挂上读写协程
type WSHandler struct {
	hub      *Hub
	opts     WSOptions
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, opts WSOptions) *WSHandler {
	check := opts.CheckOrigin
	if check == nil {
		// 演示环境：允许所有来源
		check = func(r *http.Request) bool { return true }
	}
	return &WSHandler{
		hub:  hub,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     check,
		},
	}
}

// ServeHTTP WebSocket 接入：GET /ws
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "remote", r.RemoteAddr, "err", err)
		return
	}

	client := NewClientConn(ws, h.opts.SendBuffer, h.opts.PongWait)
	id, err := h.hub.Join(client)
	if err != nil {
		Log.Warnw("join rejected", "remote", r.RemoteAddr, "err", err)
		_ = ws.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.hub, id)
}
