// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"sort"
	"time"

	"github.com/okian/breedgrade/internal/domain/rubric"
)

// Gender of the evaluated dog.
type Gender string

// Accepted genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is one of the accepted genders.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Scores maps a trait key to its 1..10 score.
type Scores map[string]int

// Clone returns an independent copy of s. A nil map stays nil.
func (s Scores) Clone() Scores {
	if s == nil {
		return nil
	}
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// MarshalJSON writes rubric keys in declaration order, followed by any
// non-rubric keys sorted by name.
func (s Scores) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	keys := make([]string, 0, len(s))
	for _, k := range rubric.Keys() {
		if _, ok := s[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range s {
		if !rubric.Has(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(s[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Input is a raw evaluation submission before validation. AgeMonths and the
// score values keep whatever shape the caller sent so the validator can
// reject non-numeric data instead of the decoder.
type Input struct {
	DogName            string         `json:"dog_name"`
	RegistrationNumber string         `json:"registration_number"`
	OwnerName          string         `json:"owner_name"`
	AgeMonths          any            `json:"age_months"`
	Gender             string         `json:"gender"`
	Scores             map[string]any `json:"scores"`
	Notes              string         `json:"notes"`

	// Mistyped lists the wire names of fields whose JSON value had the wrong
	// type. Those fields are left empty.
	Mistyped []string `json:"-"`
}

// inputWire is Input with every field left as decoded.
type inputWire struct {
	DogName            any `json:"dog_name"`
	RegistrationNumber any `json:"registration_number"`
	OwnerName          any `json:"owner_name"`
	AgeMonths          any `json:"age_months"`
	Gender             any `json:"gender"`
	Scores             any `json:"scores"`
	Notes              any `json:"notes"`
}

// UnmarshalJSON accepts any JSON object. Numbers decode as json.Number and a
// field of the wrong type is recorded in Mistyped instead of failing.
func (in *Input) UnmarshalJSON(data []byte) error {
	var w inputWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return err
	}

	*in = Input{AgeMonths: w.AgeMonths}
	in.DogName = in.text("dog_name", w.DogName)
	in.RegistrationNumber = in.text("registration_number", w.RegistrationNumber)
	in.OwnerName = in.text("owner_name", w.OwnerName)
	in.Gender = in.text("gender", w.Gender)
	switch s := w.Scores.(type) {
	case nil:
	case map[string]any:
		in.Scores = s
	default:
		in.Mistyped = append(in.Mistyped, "scores")
	}
	in.Notes = in.text("notes", w.Notes)
	return nil
}

func (in *Input) text(field string, v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		in.Mistyped = append(in.Mistyped, field)
		return ""
	}
}

// IsMistyped reports whether field arrived with the wrong JSON type.
func (in Input) IsMistyped(field string) bool {
	return slices.Contains(in.Mistyped, field)
}

// Candidate is a validated and aggregated evaluation that has not been stored yet.
type Candidate struct {
	DogName            string
	RegistrationNumber string
	OwnerName          string
	AgeMonths          int
	Gender             Gender
	Scores             Scores
	Notes              string
	TotalScore         int
	Percentage         int
}

// Evaluation returns the persisted form of c with the store-assigned id and
// creation time.
func (c Candidate) Evaluation(id string, createdAt time.Time) Evaluation {
	return Evaluation{
		ID:                 id,
		DogName:            c.DogName,
		RegistrationNumber: c.RegistrationNumber,
		OwnerName:          c.OwnerName,
		AgeMonths:          c.AgeMonths,
		Gender:             c.Gender,
		Scores:             c.Scores.Clone(),
		Notes:              c.Notes,
		TotalScore:         c.TotalScore,
		Percentage:         c.Percentage,
		CreatedAt:          createdAt,
	}
}

// Evaluation is a stored, immutable assessment of one dog.
type Evaluation struct {
	ID                 string    `json:"id"`
	DogName            string    `json:"dog_name"`
	RegistrationNumber string    `json:"registration_number"`
	OwnerName          string    `json:"owner_name"`
	AgeMonths          int       `json:"age_months"`
	Gender             Gender    `json:"gender"`
	Scores             Scores    `json:"scores"`
	Notes              string    `json:"notes"`
	TotalScore         int       `json:"total_score"`
	Percentage         int       `json:"percentage"`
	CreatedAt          time.Time `json:"created_at"`
}

// Clone returns a copy of e that shares no mutable state with it.
func (e Evaluation) Clone() Evaluation {
	e.Scores = e.Scores.Clone()
	return e
}

// Stats summarizes the stored collection.
type Stats struct {
	Total    int     `json:"total"`
	AvgScore float64 `json:"avgScore"`
}
