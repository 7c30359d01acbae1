// Package rubric holds the fixed breed-standard trait set every evaluation is
// scored against.
package rubric

// Score bounds shared by validation and aggregation.
const (
	NumTraits     = 7
	MinTraitScore = 1
	MaxTraitScore = 10
	MinScore      = NumTraits * MinTraitScore
	MaxScore      = NumTraits * MaxTraitScore
)

// Trait keys.
const (
	Head        = "head"
	Body        = "body"
	Legs        = "legs"
	Coat        = "coat"
	Temperament = "temperament"
	Movement    = "movement"
	Size        = "size"
)

// Trait is one independently scored dimension of the breed standard.
type Trait struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// traits is in declaration order; that order is used wherever scores are
// iterated or serialized.
var traits = [NumTraits]Trait{
	{Key: Head, Label: "Head & Skull", Description: "Broad, flat skull with well-defined stop and muscular cheeks"},
	{Key: Body, Label: "Body Structure", Description: "Broad, deep chest with well-sprung ribs and muscular loin"},
	{Key: Legs, Label: "Legs & Feet", Description: "Strong bone structure, well-angulated hindquarters, compact feet"},
	{Key: Coat, Label: "Coat & Color", Description: "Short, dense, smooth coat in fawn, red, brown, or brindle"},
	{Key: Temperament, Label: "Temperament", Description: "Confident, calm, intelligent, and loyal disposition"},
	{Key: Movement, Label: "Movement & Gait", Description: "Powerful, free-flowing movement with good reach and drive"},
	{Key: Size, Label: "Size & Proportion", Description: "Males 64-70cm, Females 59-65cm, well-proportioned build"},
}

// Traits returns the rubric in declaration order. The slice is a copy.
func Traits() []Trait {
	out := make([]Trait, NumTraits)
	copy(out, traits[:])
	return out
}

// Keys returns the trait keys in declaration order.
func Keys() []string {
	keys := make([]string, NumTraits)
	for i, t := range traits {
		keys[i] = t.Key
	}
	return keys
}

// Has reports whether key names a rubric trait.
func Has(key string) bool {
	_, ok := Lookup(key)
	return ok
}

// Lookup returns the trait for key.
func Lookup(key string) (Trait, bool) {
	for _, t := range traits {
		if t.Key == key {
			return t, true
		}
	}
	return Trait{}, false
}

// Index returns the declaration position of key, or -1.
func Index(key string) int {
	for i, t := range traits {
		if t.Key == key {
			return i
		}
	}
	return -1
}
