package server

import "math/rand"

// SpawnArea 出生点范围：两个坐标轴都取 [Min, Min+Span)
type SpawnArea struct {
	Min  int `json:"min"`
	Span int `json:"span"`
}

// DefaultSpawnArea 默认出生范围 [100,300)
var DefaultSpawnArea = SpawnArea{Min: 100, Span: 200}

// Registry 在线会话表：id -> 玩家状态，是“谁在线”的唯一事实来源。
// 只由 Hub 的事件循环协程访问，因此不加锁。
type Registry struct {
	players map[PlayerID]PlayerState
	area    SpawnArea
	rng     *rand.Rand
}

// NewRegistry 创建空注册表；rng 为 nil 时使用随机种子
func NewRegistry(area SpawnArea, rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if area.Span <= 0 {
		area = DefaultSpawnArea
	}
	return &Registry{
		players: make(map[PlayerID]PlayerState),
		area:    area,
		rng:     rng,
	}
}

// Create 插入新玩家：随机出生点，朝下，静止，默认昵称
func (r *Registry) Create(id PlayerID) PlayerState {
	p := PlayerState{
		ID: id,
		Position: Position{
			X: float64(r.area.Min + r.rng.Intn(r.area.Span)),
			Y: float64(r.area.Min + r.rng.Intn(r.area.Span)),
		},
		Direction: DirDown,
		Moving:    false,
		Name:      defaultName(id),
	}
	r.players[id] = p
	return p
}

func (r *Registry) Get(id PlayerID) (PlayerState, bool) {
	p, ok := r.players[id]
	return p, ok
}

func (r *Registry) Has(id PlayerID) bool {
	_, ok := r.players[id]
	return ok
}

// Update 局部更新，返回更新后的副本；id 不存在时返回 false
func (r *Registry) Update(id PlayerID, patch PlayerPatch) (PlayerState, bool) {
	p, ok := r.players[id]
	if !ok {
		return PlayerState{}, false
	}
	patch.apply(&p)
	r.players[id] = p
	return p, true
}

// Remove 删除玩家；不存在时为 no-op，返回 false
func (r *Registry) Remove(id PlayerID) bool {
	if _, ok := r.players[id]; !ok {
		return false
	}
	delete(r.players, id)
	return true
}

// Snapshot 返回全部玩家的独立副本
func (r *Registry) Snapshot() map[PlayerID]PlayerState {
	out := make(map[PlayerID]PlayerState, len(r.players))
	for id, p := range r.players {
		out[id] = p
	}
	return out
}

func (r *Registry) Len() int { return len(r.players) }

// IDs 当前在线 id（无序）
func (r *Registry) IDs() []PlayerID {
	ids := make([]PlayerID, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	return ids
}

// Clear 清空注册表（关闭服务时调用）
func (r *Registry) Clear() {
	r.players = make(map[PlayerID]PlayerState)
}

func (r *Registry) SpawnArea() SpawnArea { return r.area }

// SetSpawnArea 修改出生范围，仅影响之后新建的玩家
func (r *Registry) SetSpawnArea(a SpawnArea) {
	if a.Span <= 0 {
		return
	}
	r.area = a
}
