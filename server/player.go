package server

// PlayerID 连接级别的玩家唯一标识，连接存续期间不变
type PlayerID string

// Direction 玩家朝向，只接受四个取值
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Valid 判断朝向是否属于合法枚举
func (d Direction) Valid() bool {
	switch d {
	case DirUp, DirDown, DirLeft, DirRight:
		return true
	}
	return false
}

// Position 二维坐标；服务端不做校验与裁剪，以客户端最后上报为准
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerState 注册表中的玩家状态，按值传递，接收方拿到的都是副本
type PlayerState struct {
	ID        PlayerID  `json:"id"`
	Position  Position  `json:"position"`
	Direction Direction `json:"direction"`
	Moving    bool      `json:"moving"`
	Name      string    `json:"name"`
}

// PlayerPatch 局部更新；nil 字段保持原值
type PlayerPatch struct {
	Position  *Position
	Direction *Direction
	Moving    *bool
	Name      *string
}

func (p PlayerPatch) apply(s *PlayerState) {
	if p.Position != nil {
		s.Position = *p.Position
	}
	if p.Direction != nil {
		s.Direction = *p.Direction
	}
	if p.Moving != nil {
		s.Moving = *p.Moving
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
}

// defaultName 由 id 前4个字符生成默认昵称
func defaultName(id PlayerID) string {
	s := string(id)
	if len(s) > 4 {
		s = s[:4]
	}
	return "Player-" + s
}
