// Package scheduler implements the single-threaded engine loop (spec.md
// §4.5): one goroutine owns the World, the wake queue, and the terrain
// provider, and the only communication in or out crosses the
// Transport interface — grounded on the teacher's RegionManager/
// WorldManager select loops (internal/world/region_manager.go),
// generalized from per-region tickers to one deterministic wake-priority
// timeline.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/latticeworld/worldcore/internal/data"
	"github.com/latticeworld/worldcore/internal/logging"
	"github.com/latticeworld/worldcore/internal/metrics"
	"github.com/latticeworld/worldcore/internal/terrain"
	"github.com/latticeworld/worldcore/internal/vec"
	"github.com/latticeworld/worldcore/internal/wire"
	"github.com/latticeworld/worldcore/internal/world"
)

var engineLog = logging.GetLogger("engine")

// viewRadiusChunks half-sizes the view region computed by recomputeView;
// spec.md §4.5 only specifies the view's center offset (+16,16,0), not its
// extent, so this mirrors the wire ring's own size (wire.LocalSize) so
// every chunk a client can be sent always has a ring slot.
const viewRadiusChunks = wire.LocalSize / 2

// inputStepDuration/inputDirections are an explicit simplification:
// spec.md's Non-goals put continuous physics out of scope, so Input
// merely steps the pawn one block over a fixed duration in the bits'
// low-3-bit direction rather than resolving real movement/collision.
const inputStepDuration = 200 * time.Millisecond

var inputDirections = [8]vec.Vec3{
	{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	{X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0}, {X: -1, Y: -1},
}

// ConnID identifies a connection at the transport boundary. It is minted
// by the I/O task before a client has logged in, and therefore before the
// world has allocated it a ClientID — the engine is what bridges the two.
type ConnID uint64

// RequestPayload is the closed set of inbound opcodes the engine
// dispatches (spec.md §4.5).
type RequestPayload interface{ isRequestPayload() }

type LoginRequest struct{ Login wire.Login }
type InputRequest struct{ Input wire.Input }
type ActionRequest struct{ Action wire.Action }
type PingRequest struct{ Ping wire.Ping }
type RemoveClientRequest struct{}
type BadMessageRequest struct{ Opcode uint16 }

func (LoginRequest) isRequestPayload()        {}
func (InputRequest) isRequestPayload()        {}
func (ActionRequest) isRequestPayload()       {}
func (PingRequest) isRequestPayload()         {}
func (RemoveClientRequest) isRequestPayload() {}
func (BadMessageRequest) isRequestPayload()   {}

// ResponsePayload is the closed set of outbound messages the engine emits.
type ResponsePayload interface{ isResponsePayload() }

type InitResponse struct{ Init wire.Init }
type EntityUpdateResponse struct{ Update wire.EntityUpdate }
type TerrainChunkResponse struct{ Chunk wire.TerrainChunk }
type UnloadChunkResponse struct{ Unload wire.UnloadChunk }
type ClientRemovedResponse struct{}
type PongResponse struct{ Pong wire.Pong }

func (InitResponse) isResponsePayload()         {}
func (EntityUpdateResponse) isResponsePayload() {}
func (TerrainChunkResponse) isResponsePayload() {}
func (UnloadChunkResponse) isResponsePayload()  {}
func (ClientRemovedResponse) isResponsePayload() {}
func (PongResponse) isResponsePayload()         {}

// ClientRequest pairs an inbound payload with the connection it arrived on.
type ClientRequest struct {
	Conn    ConnID
	Payload RequestPayload
}

// Transport is the engine's only I/O boundary. Recv blocks until a
// request arrives or the stream ends (ok=false); Send delivers one
// outbound message to a connection. Framing and socket handling are the
// explicitly out-of-scope task layer on the other side of this interface
// (spec.md §5, §6).
type Transport interface {
	Recv() (ClientRequest, bool)
	Send(ConnID, ResponsePayload)
}

// Engine is the sole owner of the World, the wake queue, and the terrain
// provider (spec.md §5's single-threaded cooperative model).
type Engine struct {
	frag      *world.Fragment
	provider  *terrain.Provider
	plane     world.StablePlaneID
	transport Transport
	wake      *WakeQueue

	connOfClient map[world.ClientID]ConnID
	clientOfConn map[ConnID]world.ClientID

	metrics *metrics.Scheduler
}

// SetMetrics attaches a metrics.Scheduler instrument set. Optional — a nil
// receiver on metrics.Scheduler's methods makes every call here a no-op
// when metrics were never set.
func (e *Engine) SetMetrics(m *metrics.Scheduler) { e.metrics = m }

// NewEngine builds an Engine driving frag and provider for clients on
// plane, talking to the world through transport.
func NewEngine(frag *world.Fragment, provider *terrain.Provider, plane world.StablePlaneID, transport Transport) *Engine {
	return &Engine{
		frag:         frag,
		provider:     provider,
		plane:        plane,
		transport:    transport,
		wake:         NewWakeQueue(),
		connOfClient: make(map[world.ClientID]ConnID),
		clientOfConn: make(map[ConnID]world.ClientID),
	}
}

// Run drives the engine loop until ctx is cancelled or the transport's
// request stream ends. It never blocks on anything but the two signals
// spec.md §5 names: the wake deadline and the request channel.
func (e *Engine) Run(ctx context.Context) error {
	reqCh := make(chan ClientRequest)
	go func() {
		defer close(reqCh)
		for {
			req, ok := e.transport.Recv()
			if !ok {
				return
			}
			select {
			case reqCh <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var timerC <-chan time.Time
		var timer *time.Timer
		e.metrics.SetWakeDepth(e.wake.Len())

		if t, _, ok := e.wake.Peek(); ok {
			d := time.Duration(t-Now()) * time.Millisecond
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case req, open := <-reqCh:
			if timer != nil {
				timer.Stop()
			}
			if !open {
				return nil
			}
			start := time.Now()
			e.dispatchRequest(req)
			e.metrics.ObserveTick(time.Since(start))

		case <-timerC:
			start := time.Now()
			e.drainWake(Now())
			e.metrics.ObserveTick(time.Since(start))
		}
	}
}

func (e *Engine) drainWake(now Time) {
	for {
		t, reason, ok := e.wake.Peek()
		if !ok || t > now {
			return
		}
		e.wake.Pop()
		e.dispatchWake(reason)
	}
}

func (e *Engine) dispatchWake(reason WakeReason) {
	switch r := reason.(type) {
	case HandleInput:
		e.handleInputWake(r.Client, r.Bits)
	case HandleAction:
		e.handleActionWake(r.Client, r.Bits)
	case PhysicsUpdate:
		e.handlePhysicsUpdate(r.Client)
	case CheckView:
		e.handleCheckView(r.Client)
	}
}

func (e *Engine) dispatchRequest(req ClientRequest) {
	switch p := req.Payload.(type) {
	case LoginRequest:
		e.metrics.CountOp("login")
		e.handleLogin(req.Conn, p.Login)
	case InputRequest:
		e.metrics.CountOp("input")
		e.handleInputRequest(req.Conn, p.Input)
	case ActionRequest:
		e.metrics.CountOp("action")
		e.handleActionRequest(req.Conn, p.Action)
	case PingRequest:
		e.metrics.CountOp("ping")
		e.handlePing(req.Conn, p.Ping)
	case RemoveClientRequest:
		e.metrics.CountOp("remove_client")
		e.handleRemoveClient(req.Conn)
	case BadMessageRequest:
		// Deprecated opcodes are folded into BadMessageRequest upstream;
		// both are one-sided — logged and dropped, no kick (spec.md §7).
		e.metrics.CountOp("bad_message")
		engineLog.Warn("dropping bad/deprecated opcode %d from conn %d", p.Opcode, req.Conn)
	}
}

func (e *Engine) send(conn ConnID, payload ResponsePayload) {
	e.transport.Send(conn, payload)
}

// handleLogin adds the client, sends Init, emits EntityUpdate for its
// pawn, pre-loads its initial view, and arms the first CheckView at
// now+1000 (spec.md §4.5).
func (e *Engine) handleLogin(conn ConnID, login wire.Login) {
	chunkOffset := [2]uint8{wire.LocalSize / 2, wire.LocalSize / 2}
	cid, err := world.ClientCreate(e.frag, login.Name, chunkOffset)
	if err != nil {
		engineLog.Warn("login for %q rejected: %v", login.Name, err)
		return
	}
	e.connOfClient[cid] = conn
	e.clientOfConn[conn] = cid

	eid, err := world.EntityCreate(e.frag, vec.Vec3{}, 0, 0)
	if err != nil {
		engineLog.Warn("login pawn create failed for client %d: %v", cid, err)
		return
	}
	if _, err := world.ClientSetPawn(e.frag, cid, eid); err != nil {
		engineLog.Warn("login set_pawn failed for client %d: %v", cid, err)
		return
	}

	view := e.recomputeView(cid)

	e.send(conn, InitResponse{Init: wire.Init{
		EntityID:    eid,
		CameraPos:   [2]int16{0, 0},
		ChunkCount:  uint16(len(view.Points())),
		EntityCount: 1,
	}})
	e.broadcastEntityUpdate(eid)
	e.loadViewChunks(cid, view, nil)
	e.wake.Push(Now().Add(time.Second), CheckView{Client: cid})
}

func (e *Engine) handleInputRequest(conn ConnID, in wire.Input) {
	cid, ok := e.clientOfConn[conn]
	if !ok {
		return
	}
	now := Now()
	when := ToGlobal(in.LocalTime, now)
	if when < now {
		when = now
	}
	e.wake.Push(when, HandleInput{Client: cid, Bits: in.Bits})
}

func (e *Engine) handleActionRequest(conn ConnID, act wire.Action) {
	cid, ok := e.clientOfConn[conn]
	if !ok {
		return
	}
	now := Now()
	when := ToGlobal(act.LocalTime, now)
	if when < now {
		when = now
	}
	e.wake.Push(when, HandleAction{Client: cid, Bits: act.Bits})
}

func (e *Engine) handlePing(conn ConnID, ping wire.Ping) {
	e.send(conn, PongResponse{Pong: wire.Pong{Cookie: ping.Cookie, LocalTime: Now().ToLocal()}})
}

func (e *Engine) handleRemoveClient(conn ConnID) {
	cid, ok := e.clientOfConn[conn]
	if !ok {
		return
	}
	if err := world.ClientDestroy(e.frag, cid); err != nil {
		engineLog.Warn("remove_client failed for %d: %v", cid, err)
		return
	}
	delete(e.clientOfConn, conn)
	delete(e.connOfClient, cid)
	e.send(conn, ClientRemovedResponse{})
}

// handleInputWake applies a previously-scheduled input: a destroyed
// client or pawn is silently ignored (spec.md §7, CheckView's own "find a
// resource missing" rule generalizes to every wake handler here).
func (e *Engine) handleInputWake(cid world.ClientID, bits uint16) {
	client, ok := e.frag.World().Clients.GetMut(cid)
	if !ok {
		return
	}
	client.InputBits = bits
	if client.Pawn == nil {
		return
	}
	eid := *client.Pawn
	entity, ok := e.frag.World().Entities.Get(eid)
	if !ok {
		return
	}

	dir := inputDirections[bits&0x7]
	start := entity.Motion.EndPos
	end := start.Add(dir)
	if end == start {
		return
	}

	now := time.Now()
	motion := world.Motion{StartPos: start, EndPos: end, StartTime: now, Duration: inputStepDuration}
	if err := world.EntitySetMotion(e.frag, eid, motion); err != nil {
		return
	}
	e.broadcastEntityUpdate(eid)
	e.wake.Push(Time(now.Add(inputStepDuration).UnixMilli()), PhysicsUpdate{Client: cid})
}

// handlePhysicsUpdate continues a client's current motion using its
// last-seen input bits — the "same as HandleInput's post-phase" rearm
// spec.md §4.5 describes.
func (e *Engine) handlePhysicsUpdate(cid world.ClientID) {
	client, ok := e.frag.World().Clients.Get(cid)
	if !ok {
		return
	}
	e.handleInputWake(cid, client.InputBits)
}

// handleActionWake performs an action and broadcasts the fresh terrain of
// every chunk it touched (spec.md §4.5). What a given bits value actually
// does to the world is a script-sandbox concern out of scope here (per
// the Non-goals); performAction is the seam where that would plug in.
func (e *Engine) handleActionWake(cid world.ClientID, bits uint32) {
	client, ok := e.frag.World().Clients.Get(cid)
	if !ok || client.Pawn == nil {
		return
	}
	eid := *client.Pawn
	entity, ok := e.frag.World().Entities.Get(eid)
	if !ok {
		return
	}

	for _, cpos := range e.performAction(eid, entity, bits) {
		e.broadcastChunkUpdate(cpos)
	}
}

func (e *Engine) performAction(eid world.EntityID, entity world.Entity, bits uint32) []vec.Vec2 {
	return nil
}

// handleCheckView recomputes a client's view region and re-arms itself at
// now+1000 (spec.md §4.5).
func (e *Engine) handleCheckView(cid world.ClientID) {
	client, ok := e.frag.World().Clients.Get(cid)
	if !ok {
		return
	}
	old := client.View.Region
	newRegion := e.recomputeView(cid)
	if newRegion != old {
		e.loadViewChunks(cid, newRegion, &old)
	}
	e.wake.Push(Now().Add(time.Second), CheckView{Client: cid})
}

// recomputeView derives a client's view region from its pawn's current
// position + (16,16,0) (spec.md §4.5) and writes it back onto the client.
func (e *Engine) recomputeView(cid world.ClientID) vec.Region2 {
	client, ok := e.frag.World().Clients.Get(cid)
	if !ok {
		return vec.Region2{}
	}
	if client.Pawn == nil {
		return client.View.Region
	}
	entity, ok := e.frag.World().Entities.Get(*client.Pawn)
	if !ok {
		return client.View.Region
	}

	center := entity.Motion.EndPos.Add(vec.Vec3{X: 16, Y: 16, Z: 0}).ToVec2().ToChunkCoords()
	region := vec.NewRegion2(
		center.Sub(vec.Vec2{X: viewRadiusChunks, Y: viewRadiusChunks}),
		vec.Vec2{X: viewRadiusChunks * 2, Y: viewRadiusChunks * 2},
	)

	cm, _ := e.frag.World().Clients.GetMut(cid)
	cm.View = world.ViewState{Region: region, ChunkOffset: client.ChunkOffset}
	return region
}

// loadViewChunks sends UnloadChunk for every chunk exited since prev (if
// any) and TerrainChunk for every chunk newly entered in region.
func (e *Engine) loadViewChunks(cid world.ClientID, region vec.Region2, prev *vec.Region2) {
	client, ok := e.frag.World().Clients.Get(cid)
	if !ok {
		return
	}
	conn, ok := e.connOfClient[cid]
	if !ok {
		return
	}
	offset := vec.Vec2{X: int(client.ChunkOffset[0]), Y: int(client.ChunkOffset[1])}

	if prev != nil {
		for _, cpos := range prev.Points() {
			if region.Contains(cpos) {
				continue
			}
			e.send(conn, UnloadChunkResponse{Unload: wire.UnloadChunk{Index: wire.LocalChunkIndex(cpos, offset)}})
		}
	}

	for _, cpos := range region.Points() {
		if prev != nil && prev.Contains(cpos) {
			continue
		}
		blocks, err := e.ensureChunkLoaded(cpos)
		if err != nil {
			engineLog.Warn("view load failed for chunk %v: %v", cpos, err)
			continue
		}
		e.send(conn, TerrainChunkResponse{Chunk: wire.TerrainChunk{
			Index: wire.LocalChunkIndex(cpos, offset),
			RLE16: wire.EncodeRLE16(blocks),
		}})
	}
}

// ensureChunkLoaded returns a chunk's blocks, generating and installing it
// into the World on first access.
func (e *Engine) ensureChunkLoaded(cpos vec.Vec2) ([wire.ChunkBlockCount]data.BlockID, error) {
	var zero [wire.ChunkBlockCount]data.BlockID
	key := world.ChunkKey{Plane: e.plane, Pos: cpos}
	if tid, ok := e.frag.World().ChunkAt(key); ok {
		chunk, _ := e.frag.World().Chunks.Get(tid)
		return chunk.Blocks, nil
	}

	gc, err := e.provider.Generate(e.plane, cpos)
	if err != nil {
		return zero, fmt.Errorf("generate chunk %v: %w", cpos, err)
	}
	if _, err := world.TerrainChunkCreate(e.frag, e.plane, cpos, gc.Blocks); err != nil {
		return zero, err
	}
	base := vec.Extend(cpos.Scale(vec.ChunkSize), 0)
	for _, st := range gc.Structures {
		if _, err := world.StructureCreate(e.frag, e.plane, st.Pos.Add(base), st.Template); err != nil {
			engineLog.Warn("structure placement failed for chunk %v: %v", cpos, err)
		}
	}
	return gc.Blocks, nil
}

func (e *Engine) broadcastEntityUpdate(eid world.EntityID) {
	entity, ok := e.frag.World().Entities.Get(eid)
	if !ok {
		return
	}
	upd := wire.EntityUpdate{
		EntityID: eid,
		Anim:     entity.Anim,
		Motion: wire.WireMotion{
			StartTime: Time(entity.Motion.StartTime.UnixMilli()).ToLocal(),
			EndTime:   Time(entity.Motion.StartTime.Add(entity.Motion.Duration).UnixMilli()).ToLocal(),
			StartPos:  vec3ToWire(entity.Motion.StartPos),
			EndPos:    vec3ToWire(entity.Motion.EndPos),
		},
	}
	e.frag.World().Clients.Each(func(cid world.ClientID, _ *world.Client) bool {
		if conn, ok := e.connOfClient[cid]; ok {
			e.send(conn, EntityUpdateResponse{Update: upd})
		}
		return true
	})
}

func (e *Engine) broadcastChunkUpdate(cpos vec.Vec2) {
	key := world.ChunkKey{Plane: e.plane, Pos: cpos}
	tid, ok := e.frag.World().ChunkAt(key)
	if !ok {
		return
	}
	chunk, _ := e.frag.World().Chunks.Get(tid)
	rle := wire.EncodeRLE16(chunk.Blocks)

	e.frag.World().Clients.Each(func(cid world.ClientID, c *world.Client) bool {
		if !c.View.Region.Contains(cpos) {
			return true
		}
		conn, ok := e.connOfClient[cid]
		if !ok {
			return true
		}
		offset := vec.Vec2{X: int(c.ChunkOffset[0]), Y: int(c.ChunkOffset[1])}
		e.send(conn, TerrainChunkResponse{Chunk: wire.TerrainChunk{Index: wire.LocalChunkIndex(cpos, offset), RLE16: rle}})
		return true
	})
}

func vec3ToWire(v vec.Vec3) [3]uint16 {
	return [3]uint16{uint16(v.X), uint16(v.Y), uint16(v.Z)}
}
