package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/breedgrade/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestScores(t *testing.T) {
	convey.Convey("Given a scores mapping", t, func() {
		scores := model.Scores{
			"size": 4, "coat": 7, "head": 9, "movement": 6,
			"legs": 5, "temperament": 8, "body": 3,
		}

		convey.Convey("When encoding to JSON", func() {
			b, err := json.Marshal(scores)

			convey.Convey("Then keys follow the rubric order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual,
					`{"head":9,"body":3,"legs":5,"coat":7,"temperament":8,"movement":6,"size":4}`)
			})
		})

		convey.Convey("When it carries keys outside the rubric", func() {
			s := model.Scores{"tail": 2, "head": 1, "ears": 3}
			b, err := json.Marshal(s)

			convey.Convey("Then they follow the rubric keys sorted by name", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual, `{"head":1,"ears":3,"tail":2}`)
			})
		})

		convey.Convey("When decoding the encoded form", func() {
			b, _ := json.Marshal(scores)
			var back model.Scores
			err := json.Unmarshal(b, &back)

			convey.Convey("Then the mapping is preserved", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(back, convey.ShouldResemble, scores)
			})
		})

		convey.Convey("When cloning", func() {
			c := scores.Clone()
			c["head"] = 1

			convey.Convey("Then the original is untouched", func() {
				convey.So(scores["head"], convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When cloning a nil mapping", func() {
			var s model.Scores
			convey.So(s.Clone(), convey.ShouldBeNil)
			b, err := json.Marshal(s)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldEqual, "null")
		})
	})
}

func TestCandidateEvaluation(t *testing.T) {
	convey.Convey("Given a validated candidate", t, func() {
		c := model.Candidate{
			DogName:    "Zeus",
			OwnerName:  "A. Botha",
			AgeMonths:  18,
			Gender:     model.GenderMale,
			Scores:     model.Scores{"head": 8},
			TotalScore: 8,
			Percentage: 11,
		}
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		convey.Convey("When materializing it", func() {
			e := c.Evaluation("id-1", at)

			convey.Convey("Then all fields carry over", func() {
				convey.So(e.ID, convey.ShouldEqual, "id-1")
				convey.So(e.CreatedAt, convey.ShouldEqual, at)
				convey.So(e.DogName, convey.ShouldEqual, "Zeus")
				convey.So(e.TotalScore, convey.ShouldEqual, 8)
				convey.So(e.Percentage, convey.ShouldEqual, 11)
			})

			convey.Convey("And the scores are not shared", func() {
				e.Scores["head"] = 1
				convey.So(c.Scores["head"], convey.ShouldEqual, 8)
			})
		})
	})
}

func TestGender(t *testing.T) {
	convey.Convey("Given gender values", t, func() {
		convey.So(model.GenderMale.Valid(), convey.ShouldBeTrue)
		convey.So(model.GenderFemale.Valid(), convey.ShouldBeTrue)
		convey.So(model.Gender("Male").Valid(), convey.ShouldBeFalse)
		convey.So(model.Gender("").Valid(), convey.ShouldBeFalse)
	})
}

func TestEvaluationJSON(t *testing.T) {
	convey.Convey("Given a stored evaluation", t, func() {
		e := model.Evaluation{
			ID:         "abc",
			DogName:    "Nala",
			OwnerName:  "K. Mokoena",
			AgeMonths:  30,
			Gender:     model.GenderFemale,
			Scores:     model.Scores{"head": 5},
			TotalScore: 5,
			Percentage: 7,
			CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}

		convey.Convey("When encoding", func() {
			b, err := json.Marshal(e)
			convey.So(err, convey.ShouldBeNil)

			var m map[string]any
			convey.So(json.Unmarshal(b, &m), convey.ShouldBeNil)

			convey.Convey("Then the snake_case layout is used", func() {
				convey.So(m["dog_name"], convey.ShouldEqual, "Nala")
				convey.So(m["age_months"], convey.ShouldEqual, float64(30))
				convey.So(m["total_score"], convey.ShouldEqual, float64(5))
				convey.So(m["created_at"], convey.ShouldEqual, "2026-01-02T03:04:05Z")
			})
		})
	})
}

func TestInputUnmarshal(t *testing.T) {
	convey.Convey("Given a well-typed body", t, func() {
		var in model.Input
		err := json.Unmarshal([]byte(`{"dog_name":"Bella","owner_name":"Jane","age_months":18,"gender":"female","scores":{"head":8}}`), &in)

		convey.Convey("Then fields decode and numbers stay exact", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(in.DogName, convey.ShouldEqual, "Bella")
			convey.So(in.AgeMonths, convey.ShouldEqual, json.Number("18"))
			convey.So(in.Scores["head"], convey.ShouldEqual, json.Number("8"))
			convey.So(in.Mistyped, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a body with wrongly typed fields", t, func() {
		var in model.Input
		err := json.Unmarshal([]byte(`{"dog_name":5,"gender":true,"scores":[1],"notes":null}`), &in)

		convey.Convey("Then decoding succeeds and the fields are recorded", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(in.Mistyped, convey.ShouldResemble, []string{"dog_name", "gender", "scores"})
			convey.So(in.IsMistyped("notes"), convey.ShouldBeFalse)
			convey.So(in.DogName, convey.ShouldBeEmpty)
			convey.So(in.Scores, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a body that is not an object", t, func() {
		var in model.Input
		convey.So(json.Unmarshal([]byte(`[1,2]`), &in), convey.ShouldNotBeNil)
	})
}
