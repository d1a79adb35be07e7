package sshd

import (
	"github.com/nimbusdepot/gatesftp/internal/events"
	"github.com/nimbusdepot/gatesftp/internal/log"
	"github.com/nimbusdepot/gatesftp/internal/namespace"
	"github.com/nimbusdepot/gatesftp/internal/session"
	"github.com/nimbusdepot/gatesftp/internal/store"
)

func WithStore(cli store.Client) func(*Server) {
	return func(s *Server) { s.store = cli }
}

func WithLogger(logger log.Logger) func(*Server) {
	return func(s *Server) { s.logger = logger }
}

func WithEventBus(bus *events.Bus) func(*Server) {
	return func(s *Server) { s.bus = bus }
}

func WithSessionManager(mgr *session.Manager) func(*Server) {
	return func(s *Server) { s.sessions = mgr }
}

func WithStalenessTracker(tracker *namespace.Tracker) func(*Server) {
	return func(s *Server) { s.tracker = tracker }
}

func WithValidator(v Validator) func(*Server) {
	return func(s *Server) { s.validator = v }
}

func WithUserBasePath(p string) func(*Server) {
	return func(s *Server) { s.userBasePath = p }
}

func WithMaxFileSize(n int64) func(*Server) {
	return func(s *Server) { s.maxFileSize = n }
}

func WithBasePath(p string) func(*Server) {
	return func(s *Server) { s.basePath = p }
}

func WithAddress(addr string) func(*Server) {
	return func(s *Server) { s.address = addr }
}

func WithPort(port int) func(*Server) {
	return func(s *Server) { s.port = port }
}

func WithSSHPath(p string) func(*Server) {
	return func(s *Server) { s.sshPath = p }
}

func WithPrivateKeyName(name string) func(*Server) {
	return func(s *Server) { s.privateKey = name }
}
