package messages

import "github.com/automoto/elfwalk-mp/shared/netconfig"

// AppMessage is an application-level message on the reliable channel. The
// server stamps From and echoes it to every confirmed peer.
type AppMessage struct {
	Seq  uint64
	From netconfig.PlayerID
	Body string
}
