// Package mario registers the Super Mario Bros memory layout.
package mario

import "arcadia/games"

const ID = "mario"

// Config locates the score digits at $07DE-$07E3 and the life counter at $075A, with the heap base
// offsets calibrated against the fceumm core.
var Config = games.MemoryConfig{
	ID:             ID,
	Name:           "Super Mario Bros",
	Title:          "SUPER MARIO BROS",
	APIGameName:    "Super Mario Bros",
	Core:           "fceumm",
	Controls:       "Keys: arrows | Z = A | X = B | Enter = Start | Shift = Select",
	ScoreAddresses: []int{0x07DE, 0x07DF, 0x07E0, 0x07E1, 0x07E2, 0x07E3},
	LivesAddress:   0x075A,
	ScoreOffset:    2744362,
	LivesOffset:    2744368,
	Mode:           games.ModeAddressOffset,
}

func init() {
	games.Register(Config)
}
