package store

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"runtime/debug"
	"sync"
	"time"
)

type HandlerFunc func(req *Request) *Response

// Listener accepts frame-protocol connections on a Unix domain socket and
// dispatches requests to registered handlers. One request per connection.
type Listener struct {
	socketPath  string
	listener    net.Listener
	handlers    map[string]HandlerFunc
	mu          sync.RWMutex
	connTimeout time.Duration
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *log.Logger
}

func NewListener(socketPath string, logger *log.Logger) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{
		socketPath:  socketPath,
		handlers:    make(map[string]HandlerFunc),
		connTimeout: 30 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

func (l *Listener) SetConnTimeout(d time.Duration) {
	l.connTimeout = d
}

func (l *Listener) Handle(command string, handler HandlerFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[command] = handler
}

func (l *Listener) Start() error {
	// Remove stale socket file
	_ = os.Remove(l.socketPath)

	listener, err := net.Listen("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.socketPath, err)
	}

	if err := os.Chmod(l.socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	l.listener = listener

	l.wg.Add(1)
	go l.acceptLoop()

	return nil
}

func (l *Listener) Stop() error {
	l.cancel()
	if l.listener != nil {
		_ = l.listener.Close()
	}
	l.wg.Wait()
	_ = os.Remove(l.socketPath)
	return nil
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.ctx.Done():
				return
			default:
				l.logger.Printf("accept error: %v", err)
				continue
			}
		}

		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer func() { _ = conn.Close() }()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Printf("panic in handleConn: %v\n%s", r, debug.Stack())
		}
	}()

	_ = conn.SetDeadline(time.Now().Add(l.connTimeout))

	var req Request
	if err := ReadFrame(conn, &req); err != nil {
		l.logger.Printf("read request error: %v", err)
		return
	}

	resp := l.processRequest(&req)

	if err := WriteFrame(conn, resp); err != nil {
		l.logger.Printf("write response error: %v", err)
	}
}

func (l *Listener) processRequest(req *Request) *Response {
	if req.ProtocolVersion != ProtocolVersion {
		return ErrorResponse(
			ErrCodeProtocolMismatch,
			fmt.Sprintf("protocol version mismatch: got %d, expected %d", req.ProtocolVersion, ProtocolVersion),
		)
	}

	l.mu.RLock()
	handler, ok := l.handlers[req.Command]
	l.mu.RUnlock()

	if !ok {
		return ErrorResponse(
			ErrCodeUnknownCommand,
			fmt.Sprintf("unknown command: %q", req.Command),
		)
	}

	return handler(req)
}
