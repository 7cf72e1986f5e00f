package core

import (
	"github.com/automoto/elfwalk-mp/shared/messages"
	"github.com/automoto/elfwalk-mp/shared/netconfig"
	"golang.org/x/time/rate"
)

// Conn is the part of a router connection the server uses.
type Conn interface {
	Id() string
	SendMessage(msg any) error
}

// peer is a transport connection. It is pending until its join is accepted;
// only confirmed peers own simulation state.
type peer struct {
	conn      Conn
	name      string
	id        netconfig.PlayerID
	confirmed bool
	limiter   *rate.Limiter
}

type commandKind int

const (
	cmdJoin commandKind = iota
	cmdInput
	cmdApp
	cmdLeave
)

// command is staged by router callbacks and applied on the loop goroutine.
type command struct {
	kind  commandKind
	conn  Conn
	join  messages.JoinRequest
	input messages.PlayerInput
	app   messages.AppMessage
	err   error
}
