// Package validation checks raw evaluation submissions against the rubric and
// turns accepted ones into scored candidates.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
	"github.com/okian/breedgrade/internal/domain/scoring"
)

// Field names used in violations. They match the wire names of Input.
const (
	FieldDogName            = "dog_name"
	FieldRegistrationNumber = "registration_number"
	FieldOwnerName          = "owner_name"
	FieldAgeMonths          = "age_months"
	FieldGender             = "gender"
	FieldScores             = "scores"
	FieldNotes              = "notes"
)

// MaxAgeMonths is the largest accepted age; stores keep ages in 32-bit columns.
const MaxAgeMonths = math.MaxInt32

// ScoreField returns the violation field name for one trait score.
func ScoreField(key string) string {
	return FieldScores + "." + key
}

// Validate checks every rule against in and, when all pass, returns the
// aggregated candidate. Otherwise it returns a *ValidationError listing every
// violation; values are never clamped or corrected.
func Validate(in model.Input) (model.Candidate, error) {
	var vs []Violation

	dogName := strings.TrimSpace(in.DogName)
	switch {
	case in.IsMistyped(FieldDogName):
		vs = append(vs, wrongType(FieldDogName, "dog name must be text"))
	case dogName == "":
		vs = append(vs, Violation{Field: FieldDogName, Code: CodeRequired, Message: "dog name is required"})
	}

	if in.IsMistyped(FieldRegistrationNumber) {
		vs = append(vs, wrongType(FieldRegistrationNumber, "registration number must be text"))
	}

	ownerName := strings.TrimSpace(in.OwnerName)
	switch {
	case in.IsMistyped(FieldOwnerName):
		vs = append(vs, wrongType(FieldOwnerName, "owner name must be text"))
	case ownerName == "":
		vs = append(vs, Violation{Field: FieldOwnerName, Code: CodeRequired, Message: "owner name is required"})
	}

	age, ok := toInt(in.AgeMonths)
	switch {
	case !ok:
		vs = append(vs, Violation{Field: FieldAgeMonths, Code: CodeNotInteger, Message: "age in months must be a whole number"})
	case age <= 0:
		vs = append(vs, Violation{Field: FieldAgeMonths, Code: CodeNotPositive, Message: "age in months must be greater than zero"})
	case age > MaxAgeMonths:
		vs = append(vs, Violation{
			Field:   FieldAgeMonths,
			Code:    CodeOutOfRange,
			Message: fmt.Sprintf("age in months must be at most %d", MaxAgeMonths),
		})
	}

	// a mistyped gender is left empty and fails here like any other value
	gender := model.Gender(in.Gender)
	if !gender.Valid() {
		vs = append(vs, Violation{
			Field:   FieldGender,
			Code:    CodeInvalidChoice,
			Message: fmt.Sprintf("gender must be %q or %q", model.GenderMale, model.GenderFemale),
		})
	}

	var scores model.Scores
	if in.IsMistyped(FieldScores) {
		vs = append(vs, wrongType(FieldScores, "scores must be an object keyed by trait"))
	} else {
		var scoreViolations []Violation
		scores, scoreViolations = checkScores(in.Scores)
		vs = append(vs, scoreViolations...)
	}

	if in.IsMistyped(FieldNotes) {
		vs = append(vs, wrongType(FieldNotes, "notes must be text"))
	}

	if len(vs) > 0 {
		return model.Candidate{}, &ValidationError{Violations: vs}
	}

	agg := scoring.Aggregate(scores)
	return model.Candidate{
		DogName:            dogName,
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		OwnerName:          ownerName,
		AgeMonths:          int(age),
		Gender:             gender,
		Scores:             scores,
		Notes:              in.Notes,
		TotalScore:         agg.TotalScore,
		Percentage:         agg.Percentage,
	}, nil
}

func wrongType(field, msg string) Violation {
	return Violation{Field: field, Code: CodeWrongType, Message: msg}
}

// checkScores verifies the key set and every rubric value. A nil mapping is
// reported as a single missing_keys violation naming all traits.
func checkScores(raw map[string]any) (model.Scores, []Violation) {
	var vs []Violation

	var missing []string
	for _, key := range rubric.Keys() {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		vs = append(vs, Violation{
			Field:   FieldScores,
			Code:    CodeMissingKeys,
			Message: "missing trait scores: " + strings.Join(missing, ", "),
			Keys:    missing,
		})
	}

	var unknown []string
	for key := range raw {
		if !rubric.Has(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		vs = append(vs, Violation{
			Field:   FieldScores,
			Code:    CodeUnknownKeys,
			Message: "unknown traits: " + strings.Join(unknown, ", "),
			Keys:    unknown,
		})
	}

	scores := make(model.Scores, rubric.NumTraits)
	for _, key := range rubric.Keys() {
		v, ok := raw[key]
		if !ok {
			continue
		}
		n, ok := toInt(v)
		if !ok {
			vs = append(vs, Violation{
				Field:   ScoreField(key),
				Code:    CodeNotInteger,
				Message: key + " score must be a whole number",
			})
			continue
		}
		if n < rubric.MinTraitScore || n > rubric.MaxTraitScore {
			vs = append(vs, Violation{
				Field:   ScoreField(key),
				Code:    CodeOutOfRange,
				Message: fmt.Sprintf("%s score %d is outside %d-%d", key, n, rubric.MinTraitScore, rubric.MaxTraitScore),
			})
			continue
		}
		scores[key] = int(n)
	}
	return scores, vs
}

// toInt accepts Go integers, integral floats, integral json.Number values and
// numeric strings. Integers beyond the int64 range saturate, so every
// representation of the same oversized value fails the same range check.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return saturate(uint64(n)), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return saturate(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		return parseWhole(string(n))
	case string:
		return parseWhole(strings.TrimSpace(n))
	default:
		return 0, false
	}
}

func saturate(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// parseWhole parses an integer literal, or a decimal or exponent form with
// no fractional part.
func parseWhole(s string) (int64, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	if f <= math.MinInt64 {
		return math.MinInt64, true
	}
	return int64(f), true
}
