package mismatch

import "github.com/signadot/enumstate"

type Retry struct {
	enumstate.Tag
	Never  struct{}
	Always int `enumstate:"default(\"often\")"`
}
