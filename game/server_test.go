package game

import (
	"io"
	"sync"
	"testing"
	"time"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn is an io.ReadWriteCloser whose reads block until the
// connection is closed, like an idle socket.
type stubConn struct {
	mu    sync.Mutex
	wrote []byte

	once   sync.Once
	closed chan struct{}
}

func newStubConn() *stubConn {
	return &stubConn{closed: make(chan struct{})}
}

func (c *stubConn) Read(p []byte) (int, error) {
	<-c.closed
	return 0, io.EOF
}

func (c *stubConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrote = append(c.wrote, p...)
	return len(p), nil
}

func (c *stubConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *stubConn) written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.wrote...)
}

func TestConnectWelcome(t *testing.T) {
	s := newTestServer(nil)
	conn := newStubConn()
	s.Connect(conn)
	defer conn.Close()

	// The very first connection gets id 1.
	require.NotNil(t, s.client(1))

	pkt, _, err := proto.Extract(conn.written())
	require.NoError(t, err)
	require.NotNil(t, pkt)
	require.Equal(t, proto.SrvWelcome, pkt.ID)
	r := proto.NewReader(pkt.Body)
	assert.Equal(t, stratepig.Version, r.String())
	assert.Equal(t, "1", r.String())
	assert.NoError(t, r.Close())

	second := newStubConn()
	s.Connect(second)
	defer second.Close()
	require.NotNil(t, s.client(2))
}

func TestDisconnectFreesSeatAndID(t *testing.T) {
	s := newTestServer(nil)
	conn := newStubConn()
	s.Connect(conn)
	cli := s.client(1)
	require.NotNil(t, cli)

	// Seat the client in a room, then drop the connection.
	body := gameRequestFullBody("1", "alice", int32(stratepig.ModeDuel), 300, 15, 180)
	require.NoError(t, s.handleGameRequest(cli, body))
	room := cli.room
	require.NotNil(t, room)

	s.Disconnected(proto.MakeClient(1, conn))

	assert.Nil(t, s.client(1))
	assert.Empty(t, room.seats())
	assert.Equal(t, 1, s.rooms.Len(), "the empty room waits for the reaper")

	// The freed id is reissued to the next arrival.
	again := newStubConn()
	s.Connect(again)
	defer again.Close()
	assert.NotNil(t, s.client(1))
}

func TestPruneCollectsIdleRooms(t *testing.T) {
	s := newTestServer(nil)
	host, _, hostRec, joinRec := seatPair(t, s)
	now := time.Now().Unix()

	// Fresh rooms survive a sweep.
	s.pruneOnce(now)
	assert.Equal(t, 1, s.rooms.Len())

	// An aged-out one is collected and both seats are told.
	s.pruneOnce(now + int64(s.conf.Room.PruneAge) + 1)
	assert.Equal(t, 0, s.rooms.Len())
	assert.Equal(t, msgRoomPruned, bodyString(t, hostRec.last(proto.SrvKicked)))
	assert.Equal(t, 1, joinRec.count(proto.SrvKicked))

	// Messages guarded on the room bounce from then on.
	assert.ErrorIs(t, s.checkGuard(guardRoom, host, nil), errMissingContext)
}

func TestPruneSparesRunningGames(t *testing.T) {
	s := newTestServer(nil)
	host, join, _, _ := seatPair(t, s)
	startGame(t, s, host, join)

	s.pruneOnce(time.Now().Unix() + int64(s.conf.Room.PruneAge) + 1)
	assert.Equal(t, 1, s.rooms.Len())
}
