package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/breedgrade/internal/adapters/http/api"
	"github.com/okian/breedgrade/internal/adapters/repository"
	service "github.com/okian/breedgrade/internal/app"
	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
	"github.com/okian/breedgrade/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const validBody = `{
	"dog_name": "Bella",
	"registration_number": "FB-2024-001",
	"owner_name": "Jane",
	"age_months": 18,
	"gender": "female",
	"scores": {"head": 8, "body": 7, "legs": 9, "coat": 6, "temperament": 10, "movement": 8, "size": 7},
	"notes": "calm in the ring"
}`

// failingDeps returns err from every call.
type failingDeps struct{ err error }

func (f failingDeps) Submit(context.Context, model.Input) (model.Evaluation, error) {
	return model.Evaluation{}, f.err
}
func (f failingDeps) Get(context.Context, string) (model.Evaluation, error) {
	return model.Evaluation{}, f.err
}
func (f failingDeps) List(context.Context, int) ([]model.Evaluation, error) { return nil, f.err }
func (f failingDeps) Stats(context.Context) (model.Stats, error) { return model.Stats{}, f.err }
func (f failingDeps) Rubric() []rubric.Trait { return rubric.Traits() }

func newMux(deps api.Dependencies, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return mux
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server over a started service", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc, api.WithListLimits(2, 3))

		Convey("When checking health", func() {
			w := do(mux, http.MethodGet, "/api/health", "")

			Convey("Then it reports healthy", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"status":"healthy"}`)
			})
		})

		Convey("When reading the rubric", func() {
			w := do(mux, http.MethodGet, "/api/rubric", "")
			var body struct {
				Traits   []rubric.Trait `json:"traits"`
				MaxScore int            `json:"max_score"`
			}
			decode(w, &body)

			Convey("Then the seven traits come back in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(body.Traits), ShouldEqual, rubric.NumTraits)
				So(body.Traits[0].Key, ShouldEqual, rubric.Head)
				So(body.MaxScore, ShouldEqual, 70)
			})
		})

		Convey("When submitting a valid evaluation", func() {
			w := do(mux, http.MethodPost, "/api/evaluations", validBody)
			var e map[string]any
			decode(w, &e)

			Convey("Then it is created with derived totals", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(e["total_score"], ShouldEqual, float64(55))
				So(e["percentage"], ShouldEqual, float64(79))
				So(e["dog_name"], ShouldEqual, "Bella")
				So(w.Header().Get("Location"), ShouldEqual, "/api/evaluations/"+e["id"].(string))
			})

			Convey("And it can be read back by id", func() {
				r := do(mux, http.MethodGet, "/api/evaluations/"+e["id"].(string), "")
				var got map[string]any
				decode(r, &got)
				So(r.Code, ShouldEqual, http.StatusOK)
				So(got["id"], ShouldEqual, e["id"])
				So(got["notes"], ShouldEqual, "calm in the ring")
			})

			Convey("And stats include it", func() {
				r := do(mux, http.MethodGet, "/api/evaluations/stats", "")
				So(r.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(r.Body.String()), ShouldEqual, `{"total":1,"avgScore":79}`)
			})
		})

		Convey("When client totals are sent", func() {
			body := strings.Replace(validBody, `"notes"`, `"total_score": 70, "percentage": 100, "notes"`, 1)
			w := do(mux, http.MethodPost, "/api/evaluations", body)
			var e map[string]any
			decode(w, &e)

			Convey("Then they are ignored", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(e["percentage"], ShouldEqual, float64(79))
			})
		})

		Convey("When submitting an evaluation missing a trait", func() {
			body := strings.Replace(validBody, `"coat": 6, `, "", 1)
			w := do(mux, http.MethodPost, "/api/evaluations", body)
			var resp struct {
				Code       string `json:"code"`
				Violations []struct {
					Field string   `json:"field"`
					Code  string   `json:"code"`
					Keys  []string `json:"keys"`
				} `json:"violations"`
			}
			decode(w, &resp)

			Convey("Then it is rejected naming the missing key", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(resp.Code, ShouldEqual, "validation_failed")
				So(len(resp.Violations), ShouldEqual, 1)
				So(resp.Violations[0].Field, ShouldEqual, "scores")
				So(resp.Violations[0].Keys, ShouldResemble, []string{"coat"})
			})

			Convey("And nothing is stored", func() {
				r := do(mux, http.MethodGet, "/api/evaluations/stats", "")
				So(strings.TrimSpace(r.Body.String()), ShouldEqual, `{"total":0,"avgScore":0}`)
			})
		})

		Convey("When fields arrive with the wrong JSON types", func() {
			w := do(mux, http.MethodPost, "/api/evaluations",
				`{"dog_name":5,"owner_name":"","age_months":-1,"gender":"x","scores":{}}`)
			var resp struct {
				Code       string `json:"code"`
				Violations []struct {
					Field string `json:"field"`
					Code  string `json:"code"`
				} `json:"violations"`
			}
			decode(w, &resp)

			Convey("Then every violated rule is reported", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(resp.Code, ShouldEqual, "validation_failed")
				fields := make([]string, len(resp.Violations))
				for i, v := range resp.Violations {
					fields[i] = v.Field
				}
				So(fields, ShouldResemble, []string{"dog_name", "owner_name", "age_months", "gender", "scores"})
				So(resp.Violations[0].Code, ShouldEqual, "wrong_type")
			})
		})

		Convey("When gender or scores are not text and object", func() {
			body := strings.Replace(validBody, `"female"`, `5`, 1)
			body = strings.Replace(body, `"scores": {`, `"scores": [{`, 1)
			body = strings.Replace(body, `"size": 7}`, `"size": 7}]`, 1)
			w := do(mux, http.MethodPost, "/api/evaluations", body)
			var resp map[string]any
			decode(w, &resp)

			Convey("Then they are validation failures, not decode errors", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(resp["code"], ShouldEqual, "validation_failed")
			})
		})

		Convey("When the age does not fit 32 bits", func() {
			body := strings.Replace(validBody, `"age_months": 18`, `"age_months": 3000000000`, 1)
			w := do(mux, http.MethodPost, "/api/evaluations", body)
			var resp struct {
				Code       string `json:"code"`
				Violations []struct {
					Field string `json:"field"`
					Code  string `json:"code"`
				} `json:"violations"`
			}
			decode(w, &resp)

			Convey("Then it is rejected as out of range", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(len(resp.Violations), ShouldEqual, 1)
				So(resp.Violations[0].Field, ShouldEqual, "age_months")
				So(resp.Violations[0].Code, ShouldEqual, "out_of_range")
			})
		})

		Convey("When the body is not json", func() {
			w := do(mux, http.MethodPost, "/api/evaluations", `{"dog_name":`)
			var resp map[string]any
			decode(w, &resp)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(resp["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the body is empty", func() {
			w := do(mux, http.MethodPost, "/api/evaluations", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When listing evaluations", func() {
			for i := 0; i < 4; i++ {
				w := do(mux, http.MethodPost, "/api/evaluations",
					strings.Replace(validBody, "Bella", fmt.Sprintf("dog-%d", i), 1))
				So(w.Code, ShouldEqual, http.StatusCreated)
			}

			Convey("Then the default limit applies", func() {
				w := do(mux, http.MethodGet, "/api/evaluations", "")
				var list []map[string]any
				decode(w, &list)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(list), ShouldEqual, 2)
				So(list[0]["dog_name"], ShouldEqual, "dog-3")
			})

			Convey("And a larger limit is capped", func() {
				w := do(mux, http.MethodGet, "/api/evaluations?limit=100", "")
				var list []map[string]any
				decode(w, &list)
				So(len(list), ShouldEqual, 3)
			})

			Convey("And a bad limit is rejected", func() {
				for _, q := range []string{"0", "-1", "ten"} {
					w := do(mux, http.MethodGet, "/api/evaluations?limit="+q, "")
					So(w.Code, ShouldEqual, http.StatusBadRequest)
				}
			})
		})

		Convey("When listing an empty store", func() {
			w := do(mux, http.MethodGet, "/api/evaluations", "")

			Convey("Then an empty array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When reading a malformed id", func() {
			w := do(mux, http.MethodGet, "/api/evaluations/not-an-id", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When reading an unknown id", func() {
			w := do(mux, http.MethodGet, "/api/evaluations/3b241101-e2bb-4255-8caf-4136c566a962", "")
			var resp map[string]any
			decode(w, &resp)

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(resp["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodDelete, "/api/evaluations", "")

			Convey("Then the mux rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When scraping metrics", func() {
			do(mux, http.MethodGet, "/api/health", "")
			w := do(mux, http.MethodGet, "/metrics", "")

			Convey("Then the exposition includes request counters", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "breedgrade_evaluations_http_requests_total")
			})
		})
	})
}

func TestServer_StorageFailures(t *testing.T) {
	Convey("Given an API server whose storage is down", t, func() {
		mux := newMux(failingDeps{err: fmt.Errorf("create evaluation: %w: %w", repository.ErrUnavailable, errors.New("disk full"))})

		Convey("When submitting", func() {
			w := do(mux, http.MethodPost, "/api/evaluations", validBody)

			Convey("Then it is a retryable 503 that hides the cause", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Header().Get("Retry-After"), ShouldEqual, "1")
				So(w.Body.String(), ShouldNotContainSubstring, "disk full")
			})
		})

		Convey("When reading stats", func() {
			w := do(mux, http.MethodGet, "/api/evaluations/stats", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given an API server with an unexpected failure", t, func() {
		mux := newMux(failingDeps{err: errors.New("boom")})
		w := do(mux, http.MethodGet, "/api/evaluations", "")

		Convey("Then it is a 500 without details", func() {
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldNotContainSubstring, "boom")
		})

		Convey("And the body names the failing operation", func() {
			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["code"], ShouldEqual, "internal_error")
			So(body["message"], ShouldEqual, "api.list_evaluations: internal error")
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given the shared middleware", t, func() {
		mux := newMux(failingDeps{err: errors.New("unused")})
		h := api.WrapHandler(mux, []string{"https://breeders.example"})

		Convey("When a request carries no request id", func() {
			w := do(h, http.MethodGet, "/api/health", "")

			Convey("Then one is generated", func() {
				So(repository.ValidID(w.Header().Get(api.RequestIDHeader)), ShouldBeTrue)
			})
		})

		Convey("When a request carries a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})

		Convey("When an allowed origin sends a preflight", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/evaluations", http.NoBody)
			req.Header.Set("Origin", "https://breeders.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then CORS headers allow it", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://breeders.example")
			})
		})

		Convey("When another origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/health", http.NoBody)
			req.Header.Set("Origin", "https://elsewhere.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then no CORS grant is made", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then kind and cause are both matched", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: eof")
		})

		Convey("And nil stays nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.WrapKind("api.op", api.ErrBadRequest, nil), ShouldBeNil)
		})

		Convey("And NewKind carries only the kind", func() {
			err := api.NewKind("api.op", api.ErrInternal)
			So(errors.Is(err, api.ErrInternal), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: internal error")
		})
	})
}
