// Package transport is a demonstration I/O task sitting on the other side
// of scheduler.Transport (spec.md §1, §6: wire framing and the socket are
// explicitly out-of-scope core concerns). It frames each wire message as
// one JSON object per line rather than spec.md §6's binary layout — a
// deliberately simple stand-in, not a production wire codec.
package transport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/latticeworld/worldcore/internal/auth"
	"github.com/latticeworld/worldcore/internal/logging"
	"github.com/latticeworld/worldcore/internal/scheduler"
)

var transportLog = logging.GetLogger("transport")

// line is the on-the-wire JSON shape for every request/response this
// transport carries.
type line struct {
	Op     string    `json:"op"`
	Name   string    `json:"name,omitempty"`
	Secret [4]uint32 `json:"secret,omitempty"`
	Time   uint16    `json:"time,omitempty"`
	Bits   uint32    `json:"bits,omitempty"`
	Cookie uint32    `json:"cookie,omitempty"`
	Opcode uint16    `json:"opcode,omitempty"`

	EntityID    uint32  `json:"entity_id,omitempty"`
	CameraPos   [2]int16 `json:"camera_pos,omitempty"`
	ChunkCount  uint16  `json:"chunk_count,omitempty"`
	EntityCount uint16  `json:"entity_count,omitempty"`
	Index       uint16  `json:"index,omitempty"`
	RLE16       []byte  `json:"rle16,omitempty"`
}

// NDJSONTransport accepts TCP connections and speaks one-JSON-object-per-
// line, gating Login requests through an auth.Repository before they ever
// become a scheduler.LoginRequest — the credential DB collaborator lives
// at this boundary, not inside the engine (spec.md §6's Login row "adds
// the client"; it never re-checks a secret).
type NDJSONTransport struct {
	repo auth.Repository

	reqCh chan scheduler.ClientRequest

	mu      sync.Mutex
	conns   map[scheduler.ConnID]net.Conn
	writers map[scheduler.ConnID]*bufio.Writer
	nextID  scheduler.ConnID
}

// NewNDJSONTransport creates a transport that authenticates logins against
// repo.
func NewNDJSONTransport(repo auth.Repository) *NDJSONTransport {
	return &NDJSONTransport{
		repo:    repo,
		reqCh:   make(chan scheduler.ClientRequest, 64),
		conns:   make(map[scheduler.ConnID]net.Conn),
		writers: make(map[scheduler.ConnID]*bufio.Writer),
	}
}

// Listen accepts connections on addr until the listener is closed.
func (t *NDJSONTransport) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				transportLog.Warn("accept failed, stopping listener: %v", err)
				close(t.reqCh)
				return
			}
			t.handleConn(conn)
		}
	}()
	return nil
}

func (t *NDJSONTransport) handleConn(conn net.Conn) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.conns[id] = conn
	t.writers[id] = bufio.NewWriter(conn)
	t.mu.Unlock()

	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var l line
			if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
				t.reqCh <- scheduler.ClientRequest{Conn: id, Payload: scheduler.BadMessageRequest{}}
				continue
			}
			payload, ok := t.toRequest(l)
			if !ok {
				continue
			}
			t.reqCh <- scheduler.ClientRequest{Conn: id, Payload: payload}
		}
		t.reqCh <- scheduler.ClientRequest{Conn: id, Payload: scheduler.RemoveClientRequest{}}
		t.mu.Lock()
		delete(t.conns, id)
		delete(t.writers, id)
		t.mu.Unlock()
		_ = conn.Close()
	}()
}

// toRequest turns one decoded line into a scheduler RequestPayload,
// authenticating Login/Register against the Credential DB first.
func (t *NDJSONTransport) toRequest(l line) (scheduler.RequestPayload, bool) {
	switch l.Op {
	case "register":
		ok, err := t.repo.Register(l.Name, l.Secret)
		if err != nil {
			transportLog.Error("register(%q) failed: %v", l.Name, err)
		} else if !ok {
			transportLog.Warn("register(%q) rejected: name taken", l.Name)
		}
		return nil, false

	case "login":
		ok, err := t.repo.Login(l.Name, l.Secret)
		if err != nil {
			transportLog.Error("login(%q) failed: %v", l.Name, err)
			return nil, false
		}
		if !ok {
			transportLog.Warn("login(%q) rejected: bad credentials", l.Name)
			return nil, false
		}
		return scheduler.LoginRequest{Login: wireLogin(l)}, true

	case "input":
		return scheduler.InputRequest{Input: wireInput(l)}, true

	case "action":
		return scheduler.ActionRequest{Action: wireAction(l)}, true

	case "ping":
		return scheduler.PingRequest{Ping: wirePing(l)}, true

	case "remove_client":
		return scheduler.RemoveClientRequest{}, true

	default:
		return scheduler.BadMessageRequest{Opcode: l.Opcode}, true
	}
}

// Recv implements scheduler.Transport.
func (t *NDJSONTransport) Recv() (scheduler.ClientRequest, bool) {
	req, ok := <-t.reqCh
	return req, ok
}

// Send implements scheduler.Transport.
func (t *NDJSONTransport) Send(conn scheduler.ConnID, payload scheduler.ResponsePayload) {
	t.mu.Lock()
	w, ok := t.writers[conn]
	t.mu.Unlock()
	if !ok {
		return
	}

	l := fromResponse(payload)
	data, err := json.Marshal(l)
	if err != nil {
		transportLog.Error("marshal response for conn %d: %v", conn, err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := w.Write(data); err != nil {
		return
	}
	_ = w.WriteByte('\n')
	_ = w.Flush()
}
