package server_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pullstream/core/server"
)

// writeKeyPair stores a self-signed certificate for 127.0.0.1 in dir.
func writeKeyPair(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "streamd-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	t.Run("skips zero values", func(t *testing.T) {
		t.Parallel()

		opts, err := server.Config{Addr: ":8080"}.Options()
		require.NoError(t, err)
		assert.Empty(t, opts)
	})

	t.Run("derives one option per set value", func(t *testing.T) {
		t.Parallel()

		opts, err := server.DefaultConfig().Options()
		require.NoError(t, err)
		// write timeout defaults to zero and is skipped
		assert.Len(t, opts, 4)
	})

	t.Run("requires both TLS files", func(t *testing.T) {
		t.Parallel()

		_, err := server.Config{Addr: ":8080", TLSCertFile: "cert.pem"}.Options()
		require.ErrorIs(t, err, server.ErrFailedLoadCert)

		_, err = server.Config{Addr: ":8080", TLSKeyFile: "key.pem"}.Options()
		require.ErrorIs(t, err, server.ErrFailedLoadCert)
	})

	t.Run("fails on unreadable key pair", func(t *testing.T) {
		t.Parallel()

		_, err := server.Config{
			TLSCertFile: "/nonexistent/cert.pem",
			TLSKeyFile:  "/nonexistent/key.pem",
		}.Options()
		require.ErrorIs(t, err, server.ErrFailedLoadCert)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("creates server from defaults", func(t *testing.T) {
		t.Parallel()

		srv, err := server.NewFromConfig(server.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, ":8080", srv.Addr())
	})

	t.Run("fails without address", func(t *testing.T) {
		t.Parallel()

		srv, err := server.NewFromConfig(server.Config{ReadTimeout: time.Second})
		require.ErrorIs(t, err, server.ErrMissingAddress)
		assert.Nil(t, srv)
	})

	t.Run("serves TLS from key pair files", func(t *testing.T) {
		t.Parallel()

		certFile, keyFile := writeKeyPair(t, t.TempDir())
		srv, err := server.NewFromConfig(server.Config{
			Addr:        "127.0.0.1:0",
			TLSCertFile: certFile,
			TLSKeyFile:  keyFile,
		})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx, http.NotFoundHandler())() }()

		client := &http.Client{
			Timeout: time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // self-signed test cert
			},
		}

		require.Eventually(t, func() bool {
			addr := srv.Addr()
			if addr == "127.0.0.1:0" {
				return false
			}
			resp, err := client.Get("https://" + addr)
			if err != nil {
				return false
			}
			_ = resp.Body.Close()
			return resp.TLS != nil && resp.StatusCode == http.StatusNotFound
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("server did not stop")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := server.DefaultConfig()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, server.DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, server.DefaultWriteTimeout, cfg.WriteTimeout)
	assert.Equal(t, server.DefaultIdleTimeout, cfg.IdleTimeout)
	assert.Equal(t, server.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, server.DefaultMaxHeaderBytes, cfg.MaxHeaderBytes)
	assert.Empty(t, cfg.TLSCertFile)
	assert.Empty(t, cfg.TLSKeyFile)
}
