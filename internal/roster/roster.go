// Package roster generates synthetic salesperson rosters for environments
// that have no real sales team data to work against.
package roster

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sells-group/leadops-cli/internal/model"
)

var italianCities = []string{
	"Rome", "Milan", "Naples", "Turin", "Palermo", "Genoa", "Bologna", "Florence", "Venice", "Verona",
	"Messina", "Padua", "Trieste", "Bari", "Catania", "Brescia", "Reggio Calabria", "Modena", "Cagliari", "Parma",
}

var expertiseList = []string{
	"Solar Power", "Wind Energy", "Battery Storage", "Off-Grid Solutions", "Renewable Energy Solutions", "Energy Efficiency",
}

var firstNames = []string{
	"Anna", "Luca", "Sara", "Marco", "Giulia", "Alessandro", "Francesca", "Matteo", "Elena", "Davide",
	"Chiara", "Simone", "Valentina", "Andrea", "Martina", "Giorgio", "Ilaria", "Paolo", "Federica", "Stefano",
}

var lastNames = []string{
	"Rossi", "Bianchi", "Conti", "Ferrari", "Esposito", "Romano", "Colombo", "Ricci", "Marino", "Greco",
	"Bruno", "Gallo", "Costa", "Fontana", "Moretti", "Barbieri", "Lombardi", "Giordano", "Rinaldi", "Vitale",
}

// Generator produces synthetic salespeople. A fixed seed yields a
// reproducible roster.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator. Seed 0 means seed from the clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces n salespeople with unique IDs.
func (g *Generator) Generate(n int) []model.Salesperson {
	out := make([]model.Salesperson, 0, n)
	used := make(map[string]bool, n)

	for len(out) < n {
		id := fmt.Sprintf("SP-%04d", 1000+g.rng.Intn(9000))
		if used[id] {
			continue
		}
		used[id] = true

		out = append(out, model.Salesperson{
			ID:              id,
			Name:            g.pick(firstNames) + " " + g.pick(lastNames),
			ExperienceYears: 1 + g.rng.Intn(20),
			Expertise:       g.pick(expertiseList),
			Location:        g.pick(italianCities),
		})
	}
	return out
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}
