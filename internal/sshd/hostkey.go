package sshd

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

func (s *Server) sshKeyPath(file string) string {
	return path.Join(s.basePath, s.sshPath, file)
}

// setupSSH builds the ssh.ServerConfig for the listener: password auth via
// Validate, and a host key generated on first run and loaded from disk on
// every run after.
func (s *Server) setupSSH() (*ssh.ServerConfig, error) {
	config := &ssh.ServerConfig{
		NoClientAuth:     false,
		MaxAuthTries:     6,
		PasswordCallback: s.Validate,
	}

	keyPath := s.sshKeyPath(s.privateKey)
	if _, err := os.Stat(keyPath); os.IsNotExist(err) {
		if err := s.generateHostKey(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	privateBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	private, err := ssh.ParsePrivateKey(privateBytes)
	if err != nil {
		return nil, err
	}
	config.AddHostKey(private)
	return config, nil
}

// generateHostKey writes a fresh 2048-bit RSA host key to sshKeyPath(s.privateKey).
func (s *Server) generateHostKey() error {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.sshKeyPath(s.privateKey))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(s.sshKeyPath(s.privateKey), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return pem.Encode(f, block)
}
