package core

import (
	"sync"
	"testing"

	"github.com/dkeye/signalmaster/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		out = append(out, string(fr))
	}
	return out
}

func newMember(id domain.ConnectionID) (MemberSession, *fakeConn) {
	conn := &fakeConn{}
	return NewMemberSession(domain.NewMember(id, domain.Claim{}), conn), conn
}

func TestRoom_JoinSnapshotExcludesSelf(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("standup")

	a, aConn := newMember("a")
	snap, res, err := room.Join("a", a, Frame("add-a"))
	req.NoError(err)
	req.Empty(snap)
	req.Equal(0, res.SendTo)

	b, _ := newMember("b")
	snap, res, err = room.Join("b", b, Frame("add-b"))
	req.NoError(err)
	req.Equal(domain.Snapshot{"a": domain.DefaultResources()}, snap)
	req.Equal(1, res.SendTo)
	req.Equal([]string{"add-b"}, aConn.sent())
	req.Equal(2, room.MemberCount())
}

func TestRoom_LeaveAnnouncesOnce(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("standup")
	a, aConn := newMember("a")
	b, bConn := newMember("b")
	_, _, _ = room.Join("a", a, nil)
	_, _, _ = room.Join("b", b, nil)

	_, removed := room.Leave("b", Frame("remove-b"))
	req.True(removed)
	_, removed = room.Leave("b", Frame("remove-b"))
	req.False(removed)

	req.Equal([]string{"remove-b"}, aConn.sent())
	req.Empty(bConn.sent())
}

func TestRoom_JoinIfEmpty(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("standup")
	a, _ := newMember("a")
	b, _ := newMember("b")

	_, _, err := room.JoinIfEmpty("a", a, nil)
	req.NoError(err)
	_, _, err = room.JoinIfEmpty("b", b, nil)
	req.ErrorIs(err, domain.ErrRoomTaken)
	req.Equal(1, room.MemberCount())
}

func TestRoom_RetireOnlyWhenEmpty(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("standup")
	a, _ := newMember("a")
	_, _, _ = room.Join("a", a, nil)

	req.False(room.Retire())
	room.Leave("a", nil)
	req.True(room.Retire())

	_, _, err := room.Join("a", a, nil)
	req.ErrorIs(err, ErrRoomClosed)
}

func TestRoom_BroadcastReportsDropped(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("standup")
	a, _ := newMember("a")
	b, bConn := newMember("b")
	c, _ := newMember("c")
	bConn.full = true
	_, _, _ = room.Join("a", a, nil)
	_, _, _ = room.Join("b", b, nil)
	_, _, _ = room.Join("c", c, nil)

	res := room.Broadcast("a", Frame("hi"))
	req.Equal(1, res.SendTo)
	req.Len(res.Dropped, 1)
	req.Equal(domain.ConnectionID("b"), res.Dropped[0].Meta().ID)
}

func TestRoom_DescribeReflectsResources(t *testing.T) {
	req := require.New(t)
	room := NewRoomService("standup")
	a, _ := newMember("a")
	_, _, _ = room.Join("a", a, nil)
	req.NoError(a.Meta().SetResource(domain.ResourceScreen, true))

	req.True(room.Describe()["a"].Screen)
}
