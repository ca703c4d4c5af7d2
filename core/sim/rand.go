package sim

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// streams bundles the named random sources of one bus trip. Boarding,
// alighting and travel perturbation each draw from their own stream,
// seeded from the run seed and the trip identity, so perturbing one
// use cannot reorder another and trips are independent of scheduling.
type streams struct {
	boarding  *rand.Rand
	alighting *rand.Rand
	travel    *rand.Rand
}

func newStreams(seed uint64, routeID string, slot, bus int) streams {
	return streams{
		boarding:  rand.New(rand.NewSource(mixSeed(seed, routeID, slot, bus, "boarding"))),
		alighting: rand.New(rand.NewSource(mixSeed(seed, routeID, slot, bus, "alighting"))),
		travel:    rand.New(rand.NewSource(mixSeed(seed, routeID, slot, bus, "travel"))),
	}
}

func mixSeed(seed uint64, routeID string, slot, bus int, stream string) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d|%s", routeID, slot, bus, stream)
	return seed ^ h.Sum64()
}

func uniform(src *rand.Rand, min, max float64) float64 {
	return distuv.Uniform{Min: min, Max: max, Src: src}.Rand()
}

func poisson(src *rand.Rand, mean float64) int {
	return int(distuv.Poisson{Lambda: mean, Src: src}.Rand())
}
