package color

//enumstate:default(Red)
type Color string

const (
	Red   Color = "red"
	Green Color = "green"
)
