package server

import (
	"context"
	"errors"
	"math/rand"

	"github.com/google/uuid"
)

var (
	// ErrHubClosed 事件循环已退出
	ErrHubClosed = errors.New("hub closed")
	// ErrIDExhausted 多次生成的 id 都与在线会话冲突
	ErrIDExhausted = errors.New("no unique player id available")
)

// Conn 事件循环眼中的一条连接：只负责入队与关闭
type Conn interface {
	// Enqueue 非阻塞入队，队列满时返回 false
	Enqueue(b []byte) bool
	// Close 结束写协程并关闭底层连接，可重复调用
	Close()
}

// HubConfig 事件循环配置
type HubConfig struct {
	SpawnArea   SpawnArea
	EventBuffer int           // 入站事件通道容量
	Rand        *rand.Rand    // 出生点随机源，测试时可固定种子
	NewID       func() string // 连接 id 生成器，默认 uuid v4
}

type eventKind int

const (
	eventJoin eventKind = iota
	eventMessage
	eventLeave
	eventQuery
)

type event struct {
	kind  eventKind
	id    PlayerID
	conn  Conn
	data  []byte
	fn    func()
	ctx   context.Context
	reply chan PlayerID
	done  chan struct{}
}

// Hub 单协程事件循环：独占注册表、协议处理器与连接表。
// 所有连接事件走同一个通道，同一连接的 join / 消息 / leave 严格按序处理。
type Hub struct {
	reg     *Registry
	relay   *Relay
	metrics *Metrics
	conns   map[PlayerID]Conn

	events chan event
	done   chan struct{}
	newID  func() string
}

// NewHub 创建事件循环，调用方负责 go hub.Run(ctx)
func NewHub(cfg HubConfig) *Hub {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 256
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	h := &Hub{
		reg:     NewRegistry(cfg.SpawnArea, cfg.Rand),
		metrics: &Metrics{},
		conns:   make(map[PlayerID]Conn),
		events:  make(chan event, cfg.EventBuffer),
		done:    make(chan struct{}),
		newID:   cfg.NewID,
	}
	h.relay = NewRelay(h.reg, h, h.metrics)
	return h
}

func (h *Hub) Metrics() *Metrics { return h.metrics }

// Send 实现 Sender；只在事件循环内调用
func (h *Hub) Send(id PlayerID, msg []byte) bool {
	c, ok := h.conns[id]
	if !ok {
		return false
	}
	return c.Enqueue(msg)
}

func (h *Hub) post(ev event) error {
	select {
	case h.events <- ev:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Join 分配 id 并在事件循环中完成建档与首轮广播，返回后才可开始读取该连接
func (h *Hub) Join(conn Conn) (PlayerID, error) {
	reply := make(chan PlayerID, 1)
	if err := h.post(event{kind: eventJoin, conn: conn, reply: reply}); err != nil {
		return "", err
	}
	select {
	case id, ok := <-reply:
		if !ok {
			return "", ErrIDExhausted
		}
		return id, nil
	case <-h.done:
		return "", ErrHubClosed
	}
}

// Inbound 投递一帧入站消息；通道满时阻塞该连接的读协程而不是丢弃
func (h *Hub) Inbound(id PlayerID, data []byte) error {
	return h.post(event{kind: eventMessage, id: id, data: data})
}

// Leave 请求在事件循环中移除玩家
func (h *Hub) Leave(id PlayerID) error {
	return h.post(event{kind: eventLeave, id: id})
}

// Query 在事件循环协程中执行 fn，用于安全读取或修改注册表。
// 事件出队时 ctx 已取消则跳过 fn。
func (h *Hub) Query(ctx context.Context, fn func(reg *Registry)) error {
	done := make(chan struct{})
	ev := event{kind: eventQuery, fn: func() { fn(h.reg) }, ctx: ctx, done: done}
	select {
	case h.events <- ev:
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
