package tls

import (
	"crypto/tls"
	"crypto/x509"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contact-service/internal/config"
)

func TestDevCertificateCoversHosts(t *testing.T) {
	cert, err := devCertificate(t.TempDir(), []string{"localhost", "127.0.0.1", "example.test"})
	require.NoError(t, err)
	require.NotEmpty(t, cert.Certificate)

	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	assert.NoError(t, parsed.VerifyHostname("localhost"))
	assert.NoError(t, parsed.VerifyHostname("127.0.0.1"))
	assert.NoError(t, parsed.VerifyHostname("example.test"))
}

func TestDevCertificateReusesCachedPair(t *testing.T) {
	dir := t.TempDir()

	first, err := devCertificate(dir, []string{"localhost"})
	require.NoError(t, err)
	second, err := devCertificate(dir, []string{"localhost"})
	require.NoError(t, err)

	assert.Equal(t, first.Certificate[0], second.Certificate[0])
}

func TestManagerFallsBackToDevCertificate(t *testing.T) {
	m := NewManager(config.ServerConfig{AutoCertDir: t.TempDir()}, zap.NewNop())

	cert, err := m.GetCertificate(&tls.ClientHelloInfo{ServerName: "localhost"})
	require.NoError(t, err)
	assert.NotNil(t, cert)
}

func TestManagerPrefersConfiguredPair(t *testing.T) {
	dir := t.TempDir()
	_, err := devCertificate(dir, []string{"configured.test"})
	require.NoError(t, err)

	m := NewManager(config.ServerConfig{
		CertFile:    filepath.Join(dir, devCertFile),
		KeyFile:     filepath.Join(dir, devKeyFile),
		AutoCertDir: t.TempDir(),
	}, zap.NewNop())

	cert, err := m.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	assert.NoError(t, parsed.VerifyHostname("configured.test"))
}

func TestManagerIncludesDomainInDevCertificate(t *testing.T) {
	m := NewManager(config.ServerConfig{
		Domain:      "contact.example.com",
		AutoCertDir: t.TempDir(),
	}, zap.NewNop())

	cert, err := m.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	assert.NoError(t, parsed.VerifyHostname("contact.example.com"))
}

func TestGetTLSConfig(t *testing.T) {
	m := NewManager(config.ServerConfig{AutoCertDir: t.TempDir()}, zap.NewNop())

	tlsCfg := m.GetTLSConfig()
	assert.Equal(t, uint16(tls.VersionTLS12), tlsCfg.MinVersion)
	assert.NotNil(t, tlsCfg.GetCertificate)
	assert.Nil(t, m.AutocertManager())
}

func TestAutocertManagerEnabled(t *testing.T) {
	m := NewManager(config.ServerConfig{
		AutoCert:    true,
		Domain:      "contact.example.com",
		AutoCertDir: t.TempDir(),
	}, zap.NewNop())

	assert.NotNil(t, m.AutocertManager())
}
