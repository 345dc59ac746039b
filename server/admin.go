package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/skip2/go-qrcode"
)

// Admin 管理与监控接口；读写注册表一律经由 Hub.Query 在事件循环内完成
type Admin struct {
	hub       *Hub
	publicURL string // 为空时根据请求推导
}

func NewAdmin(hub *Hub, publicURL string) *Admin {
	return &Admin{hub: hub, publicURL: publicURL}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleConfig 读取与更新出生范围（热更新，仅影响之后的新连接）
// GET  /admin/config  返回当前配置
// POST /admin/config  以 JSON 载荷更新部分字段
func (a *Admin) HandleConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		SpawnMin  *int `json:"spawnMin,omitempty"`
		SpawnSpan *int `json:"spawnSpan,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		var area SpawnArea
		if err := a.hub.Query(r.Context(), func(reg *Registry) { area = reg.SpawnArea() }); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, cfg{SpawnMin: &area.Min, SpawnSpan: &area.Span})
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.SpawnSpan != nil && *body.SpawnSpan <= 0 {
			http.Error(w, "spawnSpan must be positive", http.StatusBadRequest)
			return
		}
		var area SpawnArea
		err := a.hub.Query(r.Context(), func(reg *Registry) {
			area = reg.SpawnArea()
			if body.SpawnMin != nil {
				area.Min = *body.SpawnMin
			}
			if body.SpawnSpan != nil {
				area.Span = *body.SpawnSpan
			}
			reg.SetSpawnArea(area)
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		Log.Infow("config updated", "spawnMin", area.Min, "spawnSpan", area.Span)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出中继运行指标
// GET /metrics
func (a *Admin) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": a.hub.Metrics().Snapshot(),
	})
}

// HandlePlayers 当前在线玩家列表（按 id 排序）
// GET /admin/players
func (a *Admin) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	players := []PlayerState{}
	err := a.hub.Query(r.Context(), func(reg *Registry) {
		for _, p := range reg.Snapshot() {
			players = append(players, p)
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(players),
		"players": players,
	})
}

// HandleJoinQR 生成加入地址的二维码，方便另一台设备扫码加入
// GET /join.png
func (a *Admin) HandleJoinQR(w http.ResponseWriter, r *http.Request) {
	url := a.publicURL
	if url == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		url = scheme + "://" + r.Host + "/"
	}

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
