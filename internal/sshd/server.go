// Package sshd hosts the SSH listener and wires an authenticated channel
// into a gateway.FS-backed sftp.RequestServer.
package sshd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/nimbusdepot/gatesftp/internal/auth"
	"github.com/nimbusdepot/gatesftp/internal/events"
	"github.com/nimbusdepot/gatesftp/internal/gateway"
	"github.com/nimbusdepot/gatesftp/internal/log"
	"github.com/nimbusdepot/gatesftp/internal/models"
	"github.com/nimbusdepot/gatesftp/internal/namespace"
	"github.com/nimbusdepot/gatesftp/internal/session"
	"github.com/nimbusdepot/gatesftp/internal/store"
)

// Validator authenticates a password credential and, on success, returns
// the user record a gateway.FS is built around.
type Validator func(ctx context.Context, user, pass string) (models.User, bool)

// Server accepts inbound TCP connections, performs the SSH handshake, and
// serves one sftp.RequestServer per accepted channel.
type Server struct {
	store        store.Client
	logger       log.Logger
	bus          *events.Bus
	sessions     *session.Manager
	tracker      *namespace.Tracker
	validator    Validator
	userBasePath string
	maxFileSize  int64

	basePath   string
	address    string
	port       int
	sshPath    string
	privateKey string
}

func defaultServer() *Server {
	return &Server{
		logger:     log.Nop{},
		basePath:   ".",
		address:    "0.0.0.0",
		port:       2222,
		sshPath:    ".ssh",
		privateKey: "id_rsa",
	}
}

// New builds a Server from opts, applied over a default configuration. A
// Validator, Store, and EventBus must be supplied via options; Initialize
// fails fast if the host key directory cannot be prepared.
func New(opts ...func(*Server)) *Server {
	s := defaultServer()
	for _, o := range opts {
		o(s)
	}
	return s
}

// Validate is the SSH password-auth callback. On success it stores the
// authenticated user as JSON in the connection's permissions extensions,
// the same spot createHandler reads it back from once a channel opens.
func (s *Server) Validate(conn ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
	username := conn.User()
	remoteAddr := conn.RemoteAddr().String()

	user, ok := s.validator(context.Background(), username, string(pass))
	if !ok {
		s.logger.Warn("authentication failed", "user", username, "remote_addr", remoteAddr)
		return nil, fmt.Errorf("authentication failed for user %q", username)
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	auditToken := auth.Token()
	s.logger.Info("user authenticated", "user", username, "remote_addr", remoteAddr, "audit_token", auditToken)
	if s.bus != nil {
		s.bus.Emit(events.Event{Kind: events.Login, Username: username})
	}

	return &ssh.Permissions{
		Extensions: map[string]string{
			"user":        username,
			"user_record": string(userJSON),
			"remote_addr": remoteAddr,
			"audit_token": auditToken,
		},
	}, nil
}

// Initialize generates or loads the host key, starts the TCP listener, and
// blocks accepting connections until the listener fails.
func (s *Server) Initialize() error {
	config, err := s.setupSSH()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return err
	}
	s.logger.Info("listening for connections", "host", s.address, "port", s.port)

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.logger.Error("accept failed", "err", err)
			continue
		}
		go s.AcceptInboundConnection(conn, config)
	}
}

// AcceptInboundConnection performs the SSH handshake on conn and serves
// every "session" channel it opens as an SFTP subsystem. The session
// manager tracks the connection for its lifetime so ForceDisconnect or
// DisconnectAll can close it from another goroutine; an idle timeout only
// emits a user-idle event.
func (s *Server) AcceptInboundConnection(conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sconn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		s.logger.Debug("handshake failed", "remote_addr", conn.RemoteAddr().String(), "err", err)
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	username := sconn.Permissions.Extensions["user"]
	auditToken := sconn.Permissions.Extensions["audit_token"]
	s.logger.Debug("session channel opened", "user", username, "audit_token", auditToken)
	s.sessions.Register(username, sconn)
	defer s.sessions.End(username, "connection closed")

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}

		go func(in <-chan *ssh.Request) {
			for req := range in {
				ok := req.Type == "subsystem" && len(req.Payload) >= 4 && string(req.Payload[4:]) == "sftp"
				req.Reply(ok, nil)
			}
		}(requests)

		handlers, err := s.createHandler(sconn)
		if err != nil {
			newChannel.Reject(ssh.ConnectionFailed, err.Error())
			channel.Close()
			return
		}
		server := sftp.NewRequestServer(channel, handlers)
		if err := server.Serve(); err == io.EOF {
			server.Close()
		}
	}
}

// createHandler builds the per-channel gateway.FS and wraps it into the
// sftp.Handlers quartet the request server dispatches to.
func (s *Server) createHandler(sconn *ssh.ServerConn) (sftp.Handlers, error) {
	var user models.User
	if err := json.Unmarshal([]byte(sconn.Permissions.Extensions["user_record"]), &user); err != nil {
		return sftp.Handlers{}, err
	}
	fst := gateway.New(s.store, s.logger, s.bus, s.sessions, s.tracker, user, s.userBasePath, s.maxFileSize)
	return sftp.Handlers{FileGet: fst, FilePut: fst, FileCmd: fst, FileList: fst}, nil
}
