package tg

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/larriantoniy/tg_group_joiner/internal/config"
)

const proxyDialTimeout = 5 * time.Second

type dialTarget struct {
	network string
	addr    string
}

func isIPv6Literal(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.To4() == nil // есть IP и это не IPv4 → IPv6
}

func isIPv4Literal(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.To4() != nil
}

// checkNetwork только логирует: без IPv6 TDLib живёт нормально.
func checkNetwork(logger *slog.Logger) {
	for _, probe := range []dialTarget{
		{"tcp4", "8.8.8.8:53"},
		{"tcp6", "[2606:4700:4700::1111]:53"},
	} {
		conn, err := net.DialTimeout(probe.network, probe.addr, 3*time.Second)
		if err != nil {
			logger.Warn("connectivity check failed", "network", probe.network, "error", err)
			continue
		}
		_ = conn.Close()
		logger.Debug("connectivity OK", "network", probe.network)
	}
}

// checkProxy проверяет, что до прокси можно достучаться по TCP.
// Для hostname пробуем сначала IPv6, потом IPv4.
func checkProxy(logger *slog.Logger, proxyCfg *config.ProxyConfig) error {
	if proxyCfg == nil || !proxyCfg.Enabled {
		logger.Debug("proxy disabled, skipping check")
		return nil
	}

	host := proxyCfg.Server
	port := proxyCfg.Port
	addr6 := fmt.Sprintf("[%s]:%d", host, port)
	addr4 := fmt.Sprintf("%s:%d", host, port)

	var attempts []dialTarget
	switch {
	case isIPv6Literal(host):
		attempts = append(attempts, dialTarget{"tcp6", addr6})
	case isIPv4Literal(host):
		attempts = append(attempts, dialTarget{"tcp4", addr4})
	default:
		attempts = append(attempts,
			dialTarget{"tcp6", addr6},
			dialTarget{"tcp4", addr4},
		)
	}

	var lastErr error
	for _, a := range attempts {
		conn, err := net.DialTimeout(a.network, a.addr, proxyDialTimeout)
		if err != nil {
			logger.Warn("proxy dial failed", "network", a.network, "addr", a.addr, "error", err)
			lastErr = err
			continue
		}
		_ = conn.Close()
		logger.Info("proxy reachable", "network", a.network, "addr", a.addr)
		return nil
	}
	return fmt.Errorf("proxy %s:%d unreachable: %w", host, port, lastErr)
}
