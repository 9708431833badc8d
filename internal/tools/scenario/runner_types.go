package scenario

import (
	"github.com/louisbranch/potionlab/internal/alchemy/ledger"
	"github.com/louisbranch/potionlab/internal/sim"
)

type scenarioState struct {
	driver   *sim.Driver
	potions  map[string]*sim.Potion
	handles  map[string]ledger.Handle
	applied  int
	expired  int
	restored int
}

// Result summarizes a finished scenario run.
type Result struct {
	Name     string
	RunID    string
	Steps    int
	Ticks    int
	Applied  int
	Expired  int
	Restored int
	Subjects map[string]map[string]float64
}
