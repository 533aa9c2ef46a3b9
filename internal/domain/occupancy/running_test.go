package occupancy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
)

// replay aplica los deltas (in, out) en orden desde cero y devuelve los totales intermedios.
func replay(deltas [][2]int) []int {
	totals := make([]int, 0, len(deltas))
	running := 0
	for _, d := range deltas {
		running = occupancy.ApplyDelta(running, d[0], d[1])
		totals = append(totals, running)
	}
	return totals
}

func TestApplyDelta_RecortaACero(t *testing.T) {
	assert.Equal(t, 0, occupancy.ApplyDelta(0, 0, 50))
	assert.Equal(t, 15, occupancy.ApplyDelta(10, 10, 5))
	assert.Equal(t, 0, occupancy.ApplyDelta(10, 0, 10))
}

// El recorte por paso no equivale a recortar la suma final:
// (10,0), (0,50), (5,0) da 10 → 0 → 5, no max(0, 10-50+5) = 0.
func TestApplyDelta_RecortePorPasoDistintoDeRecorteFinal(t *testing.T) {
	deltas := [][2]int{{10, 0}, {0, 50}, {5, 0}}

	totals := replay(deltas)
	assert.Equal(t, []int{10, 0, 5}, totals)

	sum := 0
	for _, d := range deltas {
		sum += d[0] - d[1]
	}
	finalClamp := max(0, sum)
	assert.Equal(t, 0, finalClamp)
	assert.NotEqual(t, finalClamp, totals[len(totals)-1])
}

func TestApplyDelta_SecuenciaNuncaNegativa(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		deltas := make([][2]int, 1+rng.Intn(30))
		for i := range deltas {
			deltas[i] = [2]int{rng.Intn(40), rng.Intn(60)}
		}
		for i, total := range replay(deltas) {
			assert.GreaterOrEqual(t, total, 0, "run %d paso %d", run, i)
		}
	}
}
