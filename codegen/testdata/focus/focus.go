package focus

import "github.com/signadot/enumstate"

//enumstate:default(StatsTab)
type MainFocus int

const (
	StatsTab MainFocus = iota
	GraphsTab
	InfoTab
)

//enumstate:auto
type AppFocus struct {
	enumstate.Tag
	MainWindow  MainFocus
	OtherWindow struct{}
	//enumstate:default(3, "x")
	Pair struct {
		N     int
		Label string
	}
}
