package dup

//enumstate:
type Mode int

const (
	Off Mode = iota
	On
	Standby Mode = Off
)
