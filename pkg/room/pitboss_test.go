package room

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestPitBoss_Join(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	p := NewPitBoss(logrus.StandardLogger(), newFakeStore(), DefaultOptions())
	defer p.EndShift()

	alice := NewClient(nil, "alice", "room-1")
	d1, err := p.Join(ctx, "room-1", "alice", alice)
	a.NoError(err)
	a.Equal("room-1", d1.ID())
	a.Equal(d1, alice.dealer)

	d2, err := p.Join(ctx, "room-1", "bob", nil)
	a.NoError(err)
	a.True(d1 == d2)

	_, err = p.Join(ctx, "room-2", "carol", nil)
	a.NoError(err)
	a.Equal(2, p.Rooms())

	found, ok := p.Dealer("room-1")
	a.True(ok)
	a.True(found == d1)

	// the host leaving closes the room, the next join opens a new one
	a.NoError(d1.LeaveIntent(ctx, "alice"))
	_, ok = p.Dealer("room-1")
	a.False(ok)
	a.Equal(1, p.Rooms())

	d3, err := p.Join(ctx, "room-1", "bob", nil)
	a.NoError(err)
	a.False(d1 == d3)

	state, err := d3.State(ctx)
	a.NoError(err)
	a.Equal("bob", state.Seats[0].Identity)
	a.True(state.Seats[0].Host)
}

func TestPitBoss_ClientDisconnected(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	p := NewPitBoss(nil, newFakeStore(), DefaultOptions())

	// never joined
	p.ClientDisconnected(NewClient(nil, "mallory", "room-1"))

	alice := NewClient(nil, "alice", "room-1")
	d, err := p.Join(ctx, "room-1", "alice", alice)
	a.NoError(err)

	p.ClientDisconnected(alice)
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("the room did not close")
	}

	a.Equal(0, p.Rooms())
}

func TestPitBoss_EndShift(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	p := NewPitBoss(nil, newFakeStore(), DefaultOptions())
	d1, err := p.Join(ctx, "room-1", "alice", nil)
	a.NoError(err)
	d2, err := p.Join(ctx, "room-2", "bob", nil)
	a.NoError(err)

	p.EndShift()
	<-d1.Done()
	<-d2.Done()

	a.Equal(0, p.Rooms())
	a.Equal(ErrRoomClosed, d1.Join(ctx, "carol", nil))
}
