package server

import (
	"errors"
	"fmt"
)

// ErrUnknownSession 事件来自不在注册表中的会话（已断开或从未连接）
var ErrUnknownSession = errors.New("unknown session")

type audienceKind int

const (
	audienceSelf audienceKind = iota
	audienceOthers
	audienceAll
	audienceTarget
)

// Audience 出站消息的接收范围
type Audience struct {
	kind   audienceKind
	target PlayerID
}

// Self 仅发送方
func Self() Audience { return Audience{kind: audienceSelf} }

// OthersOnly 除发送方外的所有在线会话
func OthersOnly() Audience { return Audience{kind: audienceOthers} }

// All 所有在线会话，包括发送方
func All() Audience { return Audience{kind: audienceAll} }

// Target 指定会话；不在线则为空集
func Target(id PlayerID) Audience { return Audience{kind: audienceTarget, target: id} }

func (a Audience) String() string {
	switch a.kind {
	case audienceSelf:
		return "self"
	case audienceOthers:
		return "others"
	case audienceAll:
		return "all"
	case audienceTarget:
		return "target(" + string(a.target) + ")"
	}
	return "unknown"
}

// Resolve 根据发送方与当前在线集合计算接收方
func (a Audience) Resolve(sender PlayerID, reg *Registry) []PlayerID {
	switch a.kind {
	case audienceSelf:
		if reg.Has(sender) {
			return []PlayerID{sender}
		}
	case audienceTarget:
		if reg.Has(a.target) {
			return []PlayerID{a.target}
		}
	case audienceOthers:
		out := make([]PlayerID, 0, reg.Len())
		for _, id := range reg.IDs() {
			if id != sender {
				out = append(out, id)
			}
		}
		return out
	case audienceAll:
		return reg.IDs()
	}
	return nil
}

// Sender 将编码好的消息投递到某个会话；必须非阻塞，返回 false 表示被丢弃
type Sender interface {
	Send(id PlayerID, msg []byte) bool
}

// Relay 会话协议处理：入站事件 -> 注册表操作 -> 按 Audience 扇出。
// 与 Registry 一样只在事件循环协程中调用。
type Relay struct {
	reg     *Registry
	out     Sender
	metrics *Metrics
}

func NewRelay(reg *Registry, out Sender, metrics *Metrics) *Relay {
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Relay{reg: reg, out: out, metrics: metrics}
}

// emit 编码一次，按接收范围逐个入队，返回实际入队数
func (r *Relay) emit(from PlayerID, aud Audience, m Outbound) int {
	to := aud.Resolve(from, r.reg)
	if len(to) == 0 {
		return 0
	}
	b, err := EncodeOutbound(m)
	if err != nil {
		Log.Errorw("encode outbound", "type", m.Type(), "err", err)
		return 0
	}
	n := 0
	for _, id := range to {
		if r.out.Send(id, b) {
			n++
		} else {
			r.metrics.IncSendQueueDiscarded()
		}
	}
	r.metrics.AddSent(n)
	Log.Debugw("emit", "type", m.Type(), "from", from, "audience", aud.String(), "delivered", n)
	return n
}

// Connect 新会话：建档，给自己发全量快照，向其他人广播新玩家
func (r *Relay) Connect(id PlayerID) PlayerState {
	if r.reg.Has(id) {
		Log.Warnw("connect with live id, replacing entry", "player", id)
	}
	p := r.reg.Create(id)
	r.metrics.IncOpened()
	r.emit(id, Self(), CurrentPlayers(r.reg.Snapshot()))
	r.emit(id, OthersOnly(), NewPlayer(p))
	Log.Infow("player connected", "player", id, "name", p.Name, "online", r.reg.Len())
	return p
}

// Handle 处理一帧入站消息。返回的错误只用于日志与指标，不回送客户端。
func (r *Relay) Handle(id PlayerID, data []byte) error {
	if !r.reg.Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	r.metrics.IncMessagesIn()

	in, err := DecodeInbound(data)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownType):
			r.metrics.IncUnknownType()
		default:
			r.metrics.IncMalformed()
		}
		return err
	}

	switch m := in.(type) {
	case MoveInput:
		p, _ := r.reg.Update(id, PlayerPatch{
			Position:  &m.Position,
			Direction: &m.Direction,
			Moving:    &m.Moving,
		})
		r.emit(id, OthersOnly(), PlayerMoved(p))
	case RenameInput:
		p, _ := r.reg.Update(id, PlayerPatch{Name: &m.Name})
		r.emit(id, All(), PlayerUpdated(p))
		Log.Infow("player renamed", "player", id, "name", p.Name)
	case InteractInput:
		// 尽力而为：目标不在线或指向自己时静默丢弃
		if m.TargetID == id || !r.reg.Has(m.TargetID) {
			r.metrics.IncInteractionsDropped()
			Log.Debugw("interaction dropped", "from", id, "target", m.TargetID)
			return nil
		}
		r.emit(id, Target(m.TargetID), InteractionNotice{FromID: id, Message: m.Message})
	}
	return nil
}

// Disconnect 移除会话并通知剩余玩家；重复调用为 no-op，不会重复广播
func (r *Relay) Disconnect(id PlayerID) bool {
	if !r.reg.Remove(id) {
		return false
	}
	r.metrics.IncClosed()
	r.emit(id, All(), PlayerLeft(id))
	Log.Infow("player disconnected", "player", id, "online", r.reg.Len())
	return true
}
