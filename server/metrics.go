package server

import (
	"sync/atomic"
)

// Metrics 记录中继运行期的关键指标（用于监控与调试）。
// 事件循环写，HTTP 协程读，因此全部使用原子操作。
type Metrics struct {
	ConnectionsOpened   int64 // 建立的会话数
	ConnectionsClosed   int64 // 结束的会话数
	Online              int64 // 当前在线人数
	MessagesIn          int64 // 收到的入站消息数
	MessagesSent        int64 // 入队的出站消息数（按接收方计）
	MalformedDropped    int64 // 因载荷不合法被丢弃的消息数
	UnknownTypeDropped  int64 // 因类型未知被丢弃的消息数
	InteractionsDropped int64 // 目标不在线而丢弃的交互数
	SendQueueDiscarded  int64 // 因发送队列满被丢弃的消息数
}

func (m *Metrics) IncOpened() {
	atomic.AddInt64(&m.ConnectionsOpened, 1)
	atomic.AddInt64(&m.Online, 1)
}

func (m *Metrics) IncClosed() {
	atomic.AddInt64(&m.ConnectionsClosed, 1)
	atomic.AddInt64(&m.Online, -1)
}

func (m *Metrics) IncMessagesIn()          { atomic.AddInt64(&m.MessagesIn, 1) }
func (m *Metrics) AddSent(n int)           { atomic.AddInt64(&m.MessagesSent, int64(n)) }
func (m *Metrics) IncMalformed()           { atomic.AddInt64(&m.MalformedDropped, 1) }
func (m *Metrics) IncUnknownType()         { atomic.AddInt64(&m.UnknownTypeDropped, 1) }
func (m *Metrics) IncInteractionsDropped() { atomic.AddInt64(&m.InteractionsDropped, 1) }
func (m *Metrics) IncSendQueueDiscarded()  { atomic.AddInt64(&m.SendQueueDiscarded, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"connections_opened":   atomic.LoadInt64(&m.ConnectionsOpened),
		"connections_closed":   atomic.LoadInt64(&m.ConnectionsClosed),
		"online":               atomic.LoadInt64(&m.Online),
		"messages_in":          atomic.LoadInt64(&m.MessagesIn),
		"messages_sent":        atomic.LoadInt64(&m.MessagesSent),
		"malformed_dropped":    atomic.LoadInt64(&m.MalformedDropped),
		"unknown_type_dropped": atomic.LoadInt64(&m.UnknownTypeDropped),
		"interactions_dropped": atomic.LoadInt64(&m.InteractionsDropped),
		"send_queue_discarded": atomic.LoadInt64(&m.SendQueueDiscarded),
	}
}
