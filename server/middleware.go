package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"soundwave/logger"

	"golang.org/x/time/rate"
)

// corsMiddleware 允许任意来源访问
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func loggingMiddleware(proxies *trustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logger.Info("HTTP request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", rec.status),
				logger.Int("bytes", rec.bytes),
				logger.String("remote", proxies.clientIP(r)),
				logger.Duration("latency", time.Since(start)))
		})
	}
}

// trustedProxies decides when X-Forwarded-For may be believed.
type trustedProxies struct {
	nets []*net.IPNet
}

// newTrustedProxies parses IPs and CIDRs; invalid entries are logged and skipped.
func newTrustedProxies(entries []string) *trustedProxies {
	t := &trustedProxies{}
	for _, e := range entries {
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil {
				bits := 128
				if ip.To4() != nil {
					ip, bits = ip.To4(), 32
				}
				t.nets = append(t.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
				continue
			}
		} else if _, n, err := net.ParseCIDR(e); err == nil {
			t.nets = append(t.nets, n)
			continue
		}
		logger.Warn("Ignoring invalid trusted proxy", logger.String("entry", e))
	}
	return t
}

func (t *trustedProxies) trusted(host string) bool {
	if t == nil {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range t.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP returns the socket peer unless the peer is a trusted proxy. Behind
// a trusted proxy the rightmost untrusted X-Forwarded-For hop is the client,
// since only hops added by trusted proxies can be believed.
func (t *trustedProxies) clientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !t.trusted(peer) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if net.ParseIP(hop) == nil {
			break
		}
		if !t.trusted(hop) {
			return hop
		}
		peer = hop
	}
	return peer
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
	proxies   *trustedProxies
}

func newIPRateLimiter(rps float64, burst int, proxies *trustedProxies) *ipRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     3 * time.Minute,
		now:      time.Now,
		proxies:  proxies,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	// 清理长时间未访问的客户端，每个 idle 周期最多扫描一次
	if now.Sub(l.lastSweep) >= l.idle {
		l.lastSweep = now
		for key, other := range l.visitors {
			if now.Sub(other.lastSeen) > l.idle {
				delete(l.visitors, key)
			}
		}
	}
	return v.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := l.proxies.clientIP(r)
		if !l.allow(ip) {
			logger.Warn("Rate limit exceeded", logger.String("remote", ip), logger.String("path", r.URL.Path))
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
