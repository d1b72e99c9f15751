// Package galaga registers the Galaga memory layout.
package galaga

import "arcadia/games"

const ID = "galaga"

// Config uses direct heap offsets for the fceumm core. The seventh digit is always 0 on screen.
var Config = games.MemoryConfig{
	ID:          ID,
	Name:        "Galaga",
	Title:       "GALAGA",
	APIGameName: "Galaga",
	Core:        "fceumm",
	Controls:    "Keys: left/right | Z = Fire | Enter = Start | Shift = Select",
	ScoreAddresses: []int{
		2744592,
		2744593,
		2744594,
		2744595,
		2744596,
		2744597,
		2744598,
	},
	LivesAddress: 2745525,
	Mode:         games.ModeDirect,
}

func init() {
	games.Register(Config)
}
