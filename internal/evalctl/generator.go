package evalctl

import (
	"fmt"
	"math/rand/v2"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
)

// Ranges for generated fields.
const (
	minAgeMonths = 6
	maxAgeMonths = 120
)

var (
	dogNames   = []string{"Bella", "Rocky", "Luna", "Max", "Nala", "Bruno", "Coco", "Duke", "Daisy", "Zeus"} //nolint:gochecknoglobals // sample data
	ownerNames = []string{"Jane Smith", "Ade Okafor", "Mei Chen", "Luis Ortega", "Sara Novak"}               //nolint:gochecknoglobals // sample data
)

// Generate returns n valid submissions. The same seed yields the same output.
func Generate(n int, seed int64) []model.Input {
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)) //nolint:gosec // sample data, not secrets
	out := make([]model.Input, n)
	for i := range out {
		out[i] = generateOne(r, i)
	}
	return out
}

func generateOne(r *rand.Rand, i int) model.Input {
	// bias each dog around a base quality so bands are all represented
	base := 1 + r.IntN(rubric.MaxTraitScore)
	scores := make(map[string]any, rubric.NumTraits)
	for _, k := range rubric.Keys() {
		v := base + r.IntN(5) - 2
		v = max(rubric.MinTraitScore, min(rubric.MaxTraitScore, v))
		scores[k] = v
	}

	gender := string(model.GenderMale)
	if r.IntN(2) == 1 {
		gender = string(model.GenderFemale)
	}

	return model.Input{
		DogName:            fmt.Sprintf("%s %d", dogNames[r.IntN(len(dogNames))], i+1),
		RegistrationNumber: fmt.Sprintf("FB-%04d-%03d", 2020+r.IntN(6), i+1),
		OwnerName:          ownerNames[r.IntN(len(ownerNames))],
		AgeMonths:          minAgeMonths + r.IntN(maxAgeMonths-minAgeMonths+1),
		Gender:             gender,
		Scores:             scores,
		Notes:              "seeded by evalctl",
	}
}
