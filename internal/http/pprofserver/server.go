// Package pprofserver exposes runtime profiles on a separate listener.
package pprofserver

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"courier-dispatch/internal/logx"
)

// Config stores pprof listener settings. An empty Addr disables it.
type Config struct {
	Addr string
	User string
	Pass string
}

var profiles = []string{"heap", "goroutine", "allocs", "block", "mutex", "threadcreate"}

// New returns the profiling server, or nil when it is disabled.
func New(cfg Config, logger logx.Logger) *http.Server {
	if cfg.Addr == "" {
		return nil
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           Handler(cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Handler serves /debug/pprof/. Loopback clients are always let in; anyone
// else needs basic auth with the configured credentials.
func Handler(cfg Config, logger logx.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	for _, name := range profiles {
		mux.Handle("/debug/pprof/"+name, pprof.Handler(name))
	}
	return guard(mux, cfg, logx.OrNop(logger))
}

func guard(next http.Handler, cfg Config, logger logx.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLoopback(r.RemoteAddr) || authorized(r, cfg) {
			next.ServeHTTP(w, r)
			return
		}
		logger.Warn("pprof access denied",
			logx.String("remote_addr", r.RemoteAddr),
			logx.String("path", r.URL.Path),
		)
		w.Header().Set("WWW-Authenticate", `Basic realm="pprof"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

func authorized(r *http.Request, cfg Config) bool {
	if cfg.User == "" || cfg.Pass == "" {
		return false
	}
	u, p, ok := r.BasicAuth()
	return ok && secureEq(u, cfg.User) && secureEq(p, cfg.Pass)
}

func secureEq(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	return ip != nil && ip.IsLoopback()
}
