package game

import (
	"sync"
	"testing"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/conf"
	"github.com/miapolis/stratepig-server/proto"

	"github.com/stretchr/testify/require"
)

// recorder is a Conn that keeps everything sent to it.
type recorder struct {
	id int

	mu   sync.Mutex
	sent []*proto.Packet
}

func (r *recorder) ID() int { return r.id }

func (r *recorder) Send(pkt *proto.Packet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, pkt)
	return nil
}

func (r *recorder) Kill() {}

func (r *recorder) count(id byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, pkt := range r.sent {
		if pkt.ID == id {
			n++
		}
	}
	return n
}

func (r *recorder) last(id byte) *proto.Packet {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].ID == id {
			return r.sent[i]
		}
	}
	return nil
}

// index returns the position of the first packet with the given id,
// or -1.
func (r *recorder) index(id byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, pkt := range r.sent {
		if pkt.ID == id {
			return i
		}
	}
	return -1
}

func testConf() *conf.Conf {
	return &conf.Conf{
		Proto: conf.ProtoConf{Host: "localhost", Port: 0},
		Room: conf.RoomConf{
			Max:           10,
			PruneInterval: 180,
			PruneAge:      300,
		},
	}
}

func newTestServer(c *conf.Conf) *Server {
	if c == nil {
		c = testConf()
	}
	return NewServer(c)
}

// addClient registers a synthetic connection with the server.
func addClient(s *Server, id int) (*Client, *recorder) {
	rec := &recorder{id: id}
	cli := newClient(rec)
	s.cmu.Lock()
	s.clients[id] = cli
	s.cmu.Unlock()
	return cli, rec
}

func gameRequestBody(id string, hosting bool, username string, icon int32, code string) []byte {
	return proto.NewWriter(proto.CliGameRequest).
		String(id).
		Bool(hosting).
		String(username).
		I32(icon).
		String(code).
		Bool(false).
		Packet().Body
}

func gameRequestFullBody(id, username string, mode, placement, turn, buffer int32) []byte {
	return proto.NewWriter(proto.CliGameRequest).
		String(id).
		Bool(true).
		String(username).
		I32(0).
		String("").
		Bool(true).
		I32(mode).
		I32(placement).
		I32(turn).
		I32(buffer).
		Count(0).
		Packet().Body
}

func readyBody(id string, ready bool) []byte {
	return proto.NewWriter(proto.CliUpdateReadyState).
		String(id).
		Bool(ready).
		Packet().Body
}

func placementBody(id string, board [][2]uint32) []byte {
	w := proto.NewWriter(proto.CliGamePlayerReady).
		String(id).
		Bool(true).
		Count(len(board))
	for _, piece := range board {
		w.U32(piece[0]).U32(piece[1])
	}
	return w.Packet().Body
}

func unreadyBody(id string) []byte {
	return proto.NewWriter(proto.CliGamePlayerReady).
		String(id).
		Bool(false).
		Packet().Body
}

func moveBody(id string, from, to uint8) []byte {
	return proto.NewWriter(proto.CliMove).
		String(id).
		U8(from).
		U8(to).
		Packet().Body
}

// Duel-mode placements on the front rows, one per side.
var duelLayoutOne = [][2]uint32{
	{uint32(stratepig.Scout), 31},
	{uint32(stratepig.Bomb), 32},
	{uint32(stratepig.Bomb), 33},
	{uint32(stratepig.Spy), 34},
	{uint32(stratepig.Miner), 35},
	{uint32(stratepig.Miner), 36},
	{uint32(stratepig.General), 37},
	{uint32(stratepig.Kingo), 38},
	{uint32(stratepig.Flag), 39},
	{uint32(stratepig.Scout), 40},
}

var duelLayoutTwo = [][2]uint32{
	{uint32(stratepig.Bomb), 31},
	{uint32(stratepig.Bomb), 32},
	{uint32(stratepig.Spy), 33},
	{uint32(stratepig.Miner), 34},
	{uint32(stratepig.Miner), 35},
	{uint32(stratepig.General), 36},
	{uint32(stratepig.Kingo), 37},
	{uint32(stratepig.Scout), 38},
	{uint32(stratepig.Scout), 39},
	{uint32(stratepig.Flag), 40},
}

// seatPair hosts a Duel room and joins a second client.
func seatPair(t *testing.T, s *Server) (host, join *Client, hostRec, joinRec *recorder) {
	t.Helper()
	host, hostRec = addClient(s, 2)
	join, joinRec = addClient(s, 3)

	body := gameRequestFullBody("2", "alice", int32(stratepig.ModeDuel), 300, 15, 180)
	require.NoError(t, s.handleGameRequest(host, body))
	require.NotNil(t, host.room)

	body = gameRequestBody("3", false, "bob", 1, host.room.Code())
	require.NoError(t, s.handleGameRequest(join, body))
	require.Same(t, host.room, join.room)
	return host, join, hostRec, joinRec
}

// startGame flips the room into the game as an elapsed countdown
// would and submits both placements.
func startGame(t *testing.T, s *Server, host, join *Client) *Room {
	t.Helper()
	room := host.room

	room.mu.Lock()
	room.inGame = true
	room.mu.Unlock()

	require.NoError(t, s.handleGamePlayerReady(host, placementBody("2", duelLayoutOne)))
	require.NoError(t, s.handleGamePlayerReady(join, placementBody("3", duelLayoutTwo)))

	room.mu.RLock()
	defer room.mu.RUnlock()
	require.Equal(t, PhasePlay, room.phase)
	require.False(t, room.ended)
	return room
}

func bodyString(t *testing.T, pkt *proto.Packet) string {
	t.Helper()
	require.NotNil(t, pkt)
	return proto.NewReader(pkt.Body).String()
}
