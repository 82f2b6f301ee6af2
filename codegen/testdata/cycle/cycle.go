package cycle

import "github.com/signadot/enumstate"

//enumstate:auto
type Ping struct {
	enumstate.Tag
	ToPong Pong
}

//enumstate:first
type Pong struct {
	enumstate.Tag
	ToPing Ping
}
