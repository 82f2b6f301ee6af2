package missing

import "github.com/signadot/enumstate"

//enumstate:auto
type Limit struct {
	enumstate.Tag
	Unlimited struct{}
	Capped    int
}
