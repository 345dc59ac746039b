package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 入站事件类型（客户端 -> 服务端）
const (
	TypePlayerMovement    = "playerMovement"
	TypeUpdateName        = "updateName"
	TypePlayerInteraction = "playerInteraction"
)

// 出站事件类型（服务端 -> 客户端）
const (
	TypeCurrentPlayers    = "currentPlayers"
	TypeNewPlayer         = "newPlayer"
	TypePlayerMoved       = "playerMoved"
	TypePlayerUpdated     = "playerUpdated"
	TypeInteractionNotice = "playerInteractionResponse"
	TypePlayerLeft        = "playerDisconnected"
)

var (
	// ErrMalformed 载荷缺字段、类型错误或朝向不在枚举内
	ErrMalformed = errors.New("malformed payload")
	// ErrUnknownType 未知的事件类型
	ErrUnknownType = errors.New("unknown message type")
)

// Envelope 所有 WebSocket 文本帧的外层结构
// 示例：{"type":"updateName","payload":"Zara"}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound 入站事件的封闭联合：MoveInput / RenameInput / InteractInput
type Inbound interface {
	inbound()
}

// MoveInput 移动上报，三个字段都必填
type MoveInput struct {
	Position  Position
	Direction Direction
	Moving    bool
}

// RenameInput 改名请求，任意字符串
type RenameInput struct {
	Name string
}

// InteractInput 交互意图，Message 可选
type InteractInput struct {
	TargetID PlayerID
	Message  string
}

func (MoveInput) inbound()     {}
func (RenameInput) inbound()   {}
func (InteractInput) inbound() {}

// DecodeInbound 解析一帧入站消息
func DecodeInbound(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformed, err)
	}
	switch env.Type {
	case TypePlayerMovement:
		return decodeMove(env.Payload)
	case TypeUpdateName:
		return decodeRename(env.Payload)
	case TypePlayerInteraction:
		return decodeInteract(env.Payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodeMove(payload json.RawMessage) (Inbound, error) {
	var body struct {
		Position *struct {
			X *float64 `json:"x"`
			Y *float64 `json:"y"`
		} `json:"position"`
		Direction *Direction `json:"direction"`
		Moving    *bool      `json:"moving"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, TypePlayerMovement, err)
	}
	switch {
	case body.Position == nil || body.Position.X == nil || body.Position.Y == nil:
		return nil, fmt.Errorf("%w: %s: missing position", ErrMalformed, TypePlayerMovement)
	case body.Direction == nil:
		return nil, fmt.Errorf("%w: %s: missing direction", ErrMalformed, TypePlayerMovement)
	case !body.Direction.Valid():
		return nil, fmt.Errorf("%w: %s: invalid direction %q", ErrMalformed, TypePlayerMovement, *body.Direction)
	case body.Moving == nil:
		return nil, fmt.Errorf("%w: %s: missing moving", ErrMalformed, TypePlayerMovement)
	}
	return MoveInput{
		Position:  Position{X: *body.Position.X, Y: *body.Position.Y},
		Direction: *body.Direction,
		Moving:    *body.Moving,
	}, nil
}

func decodeRename(payload json.RawMessage) (Inbound, error) {
	var name *string
	if err := json.Unmarshal(payload, &name); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, TypeUpdateName, err)
	}
	if name == nil {
		return nil, fmt.Errorf("%w: %s: missing name", ErrMalformed, TypeUpdateName)
	}
	return RenameInput{Name: *name}, nil
}

func decodeInteract(payload json.RawMessage) (Inbound, error) {
	var body struct {
		TargetID *PlayerID `json:"targetId"`
		Message  *string   `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, TypePlayerInteraction, err)
	}
	if body.TargetID == nil || *body.TargetID == "" {
		return nil, fmt.Errorf("%w: %s: missing targetId", ErrMalformed, TypePlayerInteraction)
	}
	in := InteractInput{TargetID: *body.TargetID}
	if body.Message != nil {
		in.Message = *body.Message
	}
	return in, nil
}

// Outbound 出站事件的封闭联合
type Outbound interface {
	Type() string
	payload() any
}

type CurrentPlayers map[PlayerID]PlayerState

type NewPlayer PlayerState

type PlayerMoved PlayerState

type PlayerUpdated PlayerState

type InteractionNotice struct {
	FromID  PlayerID `json:"fromId"`
	Message string   `json:"message,omitempty"`
}

type PlayerLeft PlayerID

func (CurrentPlayers) Type() string    { return TypeCurrentPlayers }
func (NewPlayer) Type() string         { return TypeNewPlayer }
func (PlayerMoved) Type() string       { return TypePlayerMoved }
func (PlayerUpdated) Type() string     { return TypePlayerUpdated }
func (InteractionNotice) Type() string { return TypeInteractionNotice }
func (PlayerLeft) Type() string        { return TypePlayerLeft }

func (m CurrentPlayers) payload() any    { return map[PlayerID]PlayerState(m) }
func (m NewPlayer) payload() any         { return PlayerState(m) }
func (m PlayerMoved) payload() any       { return PlayerState(m) }
func (m PlayerUpdated) payload() any     { return PlayerState(m) }
func (m InteractionNotice) payload() any { return m }
func (m PlayerLeft) payload() any        { return PlayerID(m) }

// EncodeOutbound 编码为 Envelope JSON
func EncodeOutbound(m Outbound) ([]byte, error) {
	body, err := json.Marshal(m.payload())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	return json.Marshal(Envelope{Type: m.Type(), Payload: body})
}
