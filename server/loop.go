package server

import (
	"context"
	"errors"
)

// maxIDAttempts 生成 id 冲突时的重试上限
const maxIDAttempts = 8

// Run 启动事件循环（单协程推进会话状态），ctx 取消后关闭所有连接并清空注册表
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case ev := <-h.events:
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev event) {
	switch ev.kind {
	case eventJoin:
		id, ok := h.assignID()
		if !ok {
			Log.Errorw("could not assign unique player id, rejecting connection")
			ev.conn.Close()
			close(ev.reply)
			return
		}
		h.conns[id] = ev.conn
		h.relay.Connect(id)
		ev.reply <- id

	case eventMessage:
		if err := h.relay.Handle(ev.id, ev.data); err != nil {
			if errors.Is(err, ErrUnknownSession) {
				Log.Debugw("message from closed session ignored", "player", ev.id)
				return
			}
			Log.Debugw("inbound dropped", "player", ev.id, "err", err)
		}

	case eventLeave:
		h.relay.Disconnect(ev.id)
		if c, ok := h.conns[ev.id]; ok {
			c.Close()
			delete(h.conns, ev.id)
		}

	case eventQuery:
		if ev.ctx == nil || ev.ctx.Err() == nil {
			ev.fn()
		}
		close(ev.done)
	}
}

// assignID 在事件循环内分配 id，保证与当前在线会话不重复
func (h *Hub) assignID() (PlayerID, bool) {
	for i := 0; i < maxIDAttempts; i++ {
		id := PlayerID(h.newID())
		if id == "" || h.reg.Has(id) {
			continue
		}
		if _, taken := h.conns[id]; taken {
			continue
		}
		return id, true
	}
	return "", false
}

func (h *Hub) shutdown() {
	for id, c := range h.conns {
		c.Close()
		delete(h.conns, id)
	}
	// 关闭时在线会话也计入结束数，online 归零
	for range h.reg.IDs() {
		h.metrics.IncClosed()
	}
	h.reg.Clear()
	Log.Info("hub stopped, registry cleared")
}
