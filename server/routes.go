package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions HTTP 路由配置
type RouterOptions struct {
	StaticDir      string   // 浏览器客户端静态资源目录，为空则不挂载
	PublicURL      string   // 二维码中的加入地址
	AllowedOrigins []string // 管理与监控接口的 CORS 来源
	WS             WSOptions
}

// NewRouter 组装 HTTP 路由：/ws 接入，管理与监控接口，以及静态客户端
func NewRouter(hub *Hub, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	admin := NewAdmin(hub, opts.PublicURL)

	r.Handle("/ws", NewWSHandler(hub, opts.WS)).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/metrics", admin.HandleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/admin/players", admin.HandlePlayers).Methods(http.MethodGet)
	r.HandleFunc("/admin/config", admin.HandleConfig).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/join.png", admin.HandleJoinQR).Methods(http.MethodGet)

	if opts.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir)))
	}

	return cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}
