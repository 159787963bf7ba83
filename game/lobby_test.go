package game

import (
	"testing"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostCreatesRoom(t *testing.T) {
	s := newTestServer(nil)
	host, rec := addClient(s, 2)

	err := s.handleGameRequest(host, gameRequestBody("2", true, "alice", 0, ""))
	require.NoError(t, err)

	require.NotNil(t, host.room)
	assert.Equal(t, 1, s.rooms.Len())
	assert.Equal(t, stratepig.RoleOne, host.player.Role)
	assert.Equal(t, "alice", host.roomPlayer.Username)
	assert.Len(t, host.room.Code(), 4)

	assert.Equal(t, 1, rec.count(proto.SrvClientInfo))
	assert.Equal(t, 1, rec.count(proto.SrvRoomPlayerAdd))
	assert.Equal(t, 1, rec.count(proto.SrvGameInfo))
}

func TestHostRejectsBadRequests(t *testing.T) {
	s := newTestServer(nil)

	c, rec := addClient(s, 2)
	err := s.handleGameRequest(c, gameRequestBody("2", true, "   ", 0, ""))
	assert.Error(t, err)
	assert.Equal(t, 1, rec.count(proto.SrvFailCreateGame))
	assert.Nil(t, c.room)

	c, rec = addClient(s, 3)
	err = s.handleGameRequest(c, gameRequestBody("3", true, "alice", 13, ""))
	assert.Error(t, err)
	assert.Equal(t, 1, rec.count(proto.SrvFailCreateGame))

	// The id inside the message must be the sender's own.
	c, _ = addClient(s, 4)
	err = s.handleGameRequest(c, gameRequestBody("9", true, "alice", 0, ""))
	assert.ErrorIs(t, err, errWrongID)
}

func TestJoinByCode(t *testing.T) {
	s := newTestServer(nil)
	host, join, hostRec, joinRec := seatPair(t, s)

	assert.Equal(t, stratepig.RoleOne, host.player.Role)
	assert.Equal(t, stratepig.RoleTwo, join.player.Role)

	// Seating the joiner reintroduces everyone to everyone.
	assert.GreaterOrEqual(t, hostRec.count(proto.SrvRoomPlayerAdd), 2)
	assert.GreaterOrEqual(t, joinRec.count(proto.SrvRoomPlayerAdd), 2)
	assert.Equal(t, 1, joinRec.count(proto.SrvGameInfo))
}

func TestJoinFailures(t *testing.T) {
	s := newTestServer(nil)
	host, _, _, _ := seatPair(t, s)
	code := host.room.Code()

	c, rec := addClient(s, 4)
	require.NoError(t, s.handleGameRequest(c, gameRequestBody("4", false, "carol", 0, "XXXX")))
	assert.Equal(t, msgRoomNotFound, bodyString(t, rec.last(proto.SrvErrJoinGame)))

	require.NoError(t, s.handleGameRequest(c, gameRequestBody("4", false, "carol", 0, code)))
	assert.Equal(t, msgRoomFull, bodyString(t, rec.last(proto.SrvErrJoinGame)))
	assert.Nil(t, c.room)
}

func TestJoinStartedRoomRejected(t *testing.T) {
	s := newTestServer(nil)
	host, join, _, _ := seatPair(t, s)
	s.leaveRoom(join)

	host.room.mu.Lock()
	host.room.inGame = true
	host.room.mu.Unlock()

	c, rec := addClient(s, 4)
	require.NoError(t, s.handleGameRequest(c,
		gameRequestBody("4", false, "carol", 0, host.room.Code())))
	assert.Equal(t, msgRoomStarted, bodyString(t, rec.last(proto.SrvErrJoinGame)))
}

func TestJoinSuffixesDuplicateUsername(t *testing.T) {
	s := newTestServer(nil)
	host, _ := addClient(s, 2)
	require.NoError(t, s.handleGameRequest(host, gameRequestBody("2", true, "alice", 0, "")))

	join, _ := addClient(s, 3)
	require.NoError(t, s.handleGameRequest(join,
		gameRequestBody("3", false, "alice", 0, host.room.Code())))

	assert.Equal(t, "alice 1", join.roomPlayer.Username)
}

func TestRoomCapacity(t *testing.T) {
	c := testConf()
	c.Room.Max = 1
	s := newTestServer(c)

	host, _ := addClient(s, 2)
	require.NoError(t, s.handleGameRequest(host, gameRequestBody("2", true, "alice", 0, "")))

	full, rec := addClient(s, 3)
	err := s.handleGameRequest(full, gameRequestBody("3", true, "bob", 0, ""))
	assert.Error(t, err)
	assert.Equal(t, msgTooManyRooms, bodyString(t, rec.last(proto.SrvErrJoinGame)))
}

func TestReadyStartsAndCancelsCountdown(t *testing.T) {
	s := newTestServer(nil)
	host, join, _, joinRec := seatPair(t, s)
	room := host.room

	require.NoError(t, s.handleReadyState(host, readyBody("2", true)))
	room.mu.RLock()
	timer := room.roomTimer
	room.mu.RUnlock()
	assert.Nil(t, timer, "one ready player must not start the countdown")

	require.NoError(t, s.handleReadyState(join, readyBody("3", true)))
	room.mu.RLock()
	timer = room.roomTimer
	room.mu.RUnlock()
	assert.NotNil(t, timer)

	require.NoError(t, s.handleReadyState(join, readyBody("3", false)))
	room.mu.RLock()
	timer = room.roomTimer
	room.mu.RUnlock()
	assert.Nil(t, timer)

	// The cancellation is announced with a negative deadline.
	pkt := joinRec.last(proto.SrvRoomTimerUpdate)
	require.NotNil(t, pkt)
	for i := 0; i < 16; i++ {
		assert.Equal(t, byte(0xff), pkt.Body[i])
	}
}

func TestUpdateIcon(t *testing.T) {
	s := newTestServer(nil)
	host, _, _, joinRec := seatPair(t, s)

	body := proto.NewWriter(proto.CliUpdatePigIcon).String("2").U32(7).Packet().Body
	require.NoError(t, s.handleUpdateIcon(host, body))
	assert.Equal(t, int32(7), host.roomPlayer.Icon)
	assert.Equal(t, 1, joinRec.count(proto.SrvUpdatedPigIcon))

	body = proto.NewWriter(proto.CliUpdatePigIcon).String("2").U32(13).Packet().Body
	assert.Error(t, s.handleUpdateIcon(host, body))
}

func settingsBody(id string, settingsID uint32, increased bool) []byte {
	return proto.NewWriter(proto.CliUpdateSettingsValue).
		String(id).
		U32(settingsID).
		Bool(increased).
		Packet().Body
}

func TestSettingsStepping(t *testing.T) {
	s := newTestServer(nil)
	host, join, _, joinRec := seatPair(t, s)
	room := host.room

	// Only the host may change settings.
	assert.Error(t, s.handleSettingsValue(join, settingsBody("3", 1, true)))

	require.NoError(t, s.handleSettingsValue(host, settingsBody("2", 1, true)))
	room.mu.RLock()
	placement := room.settings.PlacementTime
	room.mu.RUnlock()
	assert.Equal(t, uint32(330), placement)
	assert.Equal(t, 1, joinRec.count(proto.SrvSettingsValueChanged))

	// The turn timer wraps around.
	room.mu.Lock()
	room.settings.TurnTime = 30
	room.mu.Unlock()
	require.NoError(t, s.handleSettingsValue(host, settingsBody("2", 2, true)))
	room.mu.RLock()
	turn := room.settings.TurnTime
	room.mu.RUnlock()
	assert.Equal(t, uint32(0), turn)

	// The buffer timer sticks at its bound without an announcement.
	room.mu.Lock()
	room.settings.BufferTime = 0
	room.mu.Unlock()
	before := joinRec.count(proto.SrvSettingsValueChanged)
	require.NoError(t, s.handleSettingsValue(host, settingsBody("2", 3, false)))
	assert.Equal(t, before, joinRec.count(proto.SrvSettingsValueChanged))
}

func TestModeCycleAppliesPreset(t *testing.T) {
	s := newTestServer(nil)
	host, _, _, joinRec := seatPair(t, s)
	room := host.room

	// Duel cycles forward into Custom, then to Original.
	require.NoError(t, s.handleSettingsValue(host, settingsBody("2", 0, true)))
	room.mu.RLock()
	mode := room.settings.Mode
	room.mu.RUnlock()
	assert.Equal(t, stratepig.ModeCustom, mode)

	require.NoError(t, s.handleSettingsValue(host, settingsBody("2", 0, true)))
	room.mu.RLock()
	mode = room.settings.Mode
	cfg := room.settings.PigConfig
	turn := room.settings.TurnTime
	buffer := room.settings.BufferTime
	room.mu.RUnlock()
	assert.Equal(t, stratepig.ModeOriginal, mode)
	assert.Equal(t, PresetConfig(stratepig.ModeOriginal), cfg)
	assert.Equal(t, uint32(15), turn)
	assert.Equal(t, uint32(300), buffer)
	assert.GreaterOrEqual(t, joinRec.count(proto.SrvPigConfigValueChanged), 1)
}

func pigItemBody(id string, pig uint32, increased bool) []byte {
	return proto.NewWriter(proto.CliUpdatePigItemValue).
		String(id).
		U32(pig).
		Bool(increased).
		Packet().Body
}

func TestPigItemUpdate(t *testing.T) {
	s := newTestServer(nil)
	host, join, _, joinRec := seatPair(t, s)
	room := host.room

	// Duel fields 10 pigs, so there is headroom to add one.
	require.NoError(t, s.handlePigItemUpdate(host, pigItemBody("2", uint32(stratepig.Miner), true)))
	room.mu.RLock()
	mode := room.settings.Mode
	miners := room.settings.PigConfig[stratepig.Miner]
	room.mu.RUnlock()
	assert.Equal(t, stratepig.ModeCustom, mode)
	assert.Equal(t, uint8(3), miners)
	assert.Equal(t, 1, joinRec.count(proto.SrvPigItemValueChanged))

	// Cannot drop below zero.
	before := joinRec.count(proto.SrvPigItemValueChanged)
	require.NoError(t, s.handlePigItemUpdate(host, pigItemBody("2", uint32(stratepig.Infiltrator), false)))
	assert.Equal(t, before, joinRec.count(proto.SrvPigItemValueChanged))

	// Only the host has a say.
	assert.Error(t, s.handlePigItemUpdate(join, pigItemBody("3", uint32(stratepig.Miner), true)))

	// Unknown piece kinds are rejected.
	assert.Error(t, s.handlePigItemUpdate(host, pigItemBody("2", 99, true)))
}

func TestPigItemUpdateRespectsRosterCap(t *testing.T) {
	s := newTestServer(nil)
	host, _, _, joinRec := seatPair(t, s)
	room := host.room

	room.mu.Lock()
	room.settings.PigConfig = PresetConfig(stratepig.ModeOriginal) // already 40
	room.mu.Unlock()

	require.NoError(t, s.handlePigItemUpdate(host, pigItemBody("2", uint32(stratepig.Scout), true)))
	room.mu.RLock()
	scouts := room.settings.PigConfig[stratepig.Scout]
	room.mu.RUnlock()
	assert.Equal(t, uint8(8), scouts)
	assert.Equal(t, 0, joinRec.count(proto.SrvPigItemValueChanged))
}

func TestLeavePromotesRemainingPlayer(t *testing.T) {
	s := newTestServer(nil)
	host, join, _, joinRec := seatPair(t, s)
	room := host.room

	require.NoError(t, s.handleClientLeave(host, nil))

	assert.Nil(t, host.room)
	room.mu.RLock()
	seats := len(room.clients)
	inGame := room.inGame
	role := join.player.Role
	room.mu.RUnlock()
	assert.Equal(t, 1, seats)
	assert.False(t, inGame)
	assert.Equal(t, stratepig.RoleOne, role)
	assert.Equal(t, "2", bodyString(t, joinRec.last(proto.SrvClientDisconnect)))

	// The room lingers for the reaper rather than disappearing.
	assert.Equal(t, 1, s.rooms.Len())
}

func TestGuards(t *testing.T) {
	s := newTestServer(nil)
	c, _ := addClient(s, 2)

	// No room yet.
	err := s.checkGuard(guardRoom, c, readyBody("2", true))
	assert.ErrorIs(t, err, errMissingContext)

	require.NoError(t, s.handleGameRequest(c, gameRequestBody("2", true, "alice", 0, "")))
	assert.NoError(t, s.checkGuard(guardRoom, c, readyBody("2", true)))
	assert.NoError(t, s.checkGuard(guardGame, c, readyBody("2", true)))

	// A mismatched embedded id is rejected, an empty body is not.
	assert.ErrorIs(t, s.checkGuard(guardRoom, c, readyBody("9", true)), errWrongID)
	assert.NoError(t, s.checkGuard(guardGame, c, nil))

	// Strict play guard requires the play phase.
	assert.ErrorIs(t, s.checkGuard(guardGameStrict, c, nil), errMissingContext)
}
