// Package tls resolves the certificates presented during HTTPS
// handshakes: ACME autocert when enabled, a configured cert/key pair,
// or a locally generated development certificate as the last resort.
package tls

import (
	"crypto/tls"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"contact-service/internal/config"
)

// Manager picks the server certificate for TLS handshakes.
type Manager struct {
	cfg      config.ServerConfig
	logger   *zap.Logger
	autoCert *autocert.Manager
}

// NewManager creates a certificate manager from the server
// configuration. With AutoCert enabled, ACME certificates for the
// configured domain are cached under AutoCertDir.
func NewManager(cfg config.ServerConfig, logger *zap.Logger) *Manager {
	m := &Manager{cfg: cfg, logger: logger}

	if cfg.AutoCert {
		if err := os.MkdirAll(cfg.AutoCertDir, 0o700); err != nil {
			logger.Warn("autocert cache directory unavailable",
				zap.String("dir", cfg.AutoCertDir),
				zap.Error(err),
			)
			return m
		}
		m.autoCert = &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.Domain),
			Cache:      autocert.DirCache(cfg.AutoCertDir),
			Email:      cfg.Email,
		}
		logger.Info("autocert enabled",
			zap.String("domain", cfg.Domain),
			zap.String("cache_dir", cfg.AutoCertDir),
		)
	}

	return m
}

// GetCertificate resolves the certificate for one handshake. Autocert
// wins when it can serve the requested host, then the configured
// cert/key pair, then a self-signed development certificate.
func (m *Manager) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	if m.autoCert != nil {
		if cert, err := m.autoCert.GetCertificate(hello); err == nil {
			return cert, nil
		}
	}

	if m.cfg.CertFile != "" && m.cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(m.cfg.CertFile, m.cfg.KeyFile)
		if err == nil {
			return &cert, nil
		}
		m.logger.Warn("configured certificate pair unusable",
			zap.String("cert_file", m.cfg.CertFile),
			zap.Error(err),
		)
	}

	hosts := []string{"localhost", "127.0.0.1", "::1"}
	if m.cfg.Domain != "" {
		hosts = append(hosts, m.cfg.Domain)
	}
	cert, err := devCertificate(m.cfg.AutoCertDir, hosts)
	if err != nil {
		return nil, fmt.Errorf("generate development certificate: %w", err)
	}
	m.logger.Info("serving development certificate", zap.Strings("hosts", hosts))
	return &cert, nil
}

// GetTLSConfig returns the server-side TLS configuration.
func (m *Manager) GetTLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: m.GetCertificate,
		NextProtos:     []string{"h2", "http/1.1"},
		MinVersion:     tls.VersionTLS12,
	}
}

// AutocertManager returns the ACME manager, nil when autocert is
// disabled. The caller uses it to serve HTTP-01 challenges.
func (m *Manager) AutocertManager() *autocert.Manager {
	return m.autoCert
}
