package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/neuropulse/internal/adapters/http/api"
	repository "github.com/okian/neuropulse/internal/adapters/repository"
	"github.com/okian/neuropulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	ingestOK    bool
	ingested    []model.UsageEvent
	assessment  model.InstantAssessment
	sessions    []repository.StoredSession
	sessionsErr error
	lastLimit   int
}

func (m *mockDependencies) Ingest(ctx context.Context, e model.UsageEvent) bool {
	if !m.ingestOK {
		return false
	}
	m.ingested = append(m.ingested, e)
	return true
}

func (m *mockDependencies) Assessment() model.InstantAssessment {
	return m.assessment
}

func (m *mockDependencies) RecentSessions(ctx context.Context, limit int) ([]repository.StoredSession, error) {
	m.lastLimit = limit
	if m.sessionsErr != nil {
		return nil, m.sessionsErr
	}
	return m.sessions, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 1000)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{ingestOK: true}
		mux := newTestMux(deps)

		Convey("Then the health endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)

			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldBeTrue)
		})
	})
}

func TestServer_PostEvent(t *testing.T) {
	Convey("Given the events endpoint", t, func() {
		deps := &mockDependencies{ingestOK: true}
		mux := newTestMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When posting a valid event", func() {
			ts := time.Now().UnixMilli()
			w := post(fmt.Sprintf(`{"event_id":"e1","app_id":"com.instagram.android","type":"FOREGROUND","timestamp":%d}`, ts))

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
				So(deps.ingested, ShouldHaveLength, 1)
				So(deps.ingested[0].EventID, ShouldEqual, "e1")
				So(deps.ingested[0].Type, ShouldEqual, model.EventForeground)
			})
		})

		Convey("When posting without an event id", func() {
			ts := time.Now().UnixMilli()
			w := post(fmt.Sprintf(`{"app_id":"com.whatsapp","type":"background","timestamp":%d}`, ts))

			Convey("Then one is generated", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.ingested, ShouldHaveLength, 1)
				So(deps.ingested[0].EventID, ShouldNotBeEmpty)
				So(deps.ingested[0].Type, ShouldEqual, model.EventBackground)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := post(`{not json`)

			Convey("Then it is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
			})
		})

		Convey("When posting an invalid event", func() {
			cases := []string{
				`{"app_id":"","type":"FOREGROUND","timestamp":123}`,
				`{"app_id":"app","type":"FOREGROUND","timestamp":0}`,
				`{"app_id":"app","type":"SIDEWAYS","timestamp":123}`,
			}
			for _, body := range cases {
				w := post(body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When ingestion applies backpressure", func() {
			deps.ingestOK = false
			w := post(`{"app_id":"app","type":"FOREGROUND","timestamp":123}`)

			Convey("Then the caller is throttled", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Body.String(), ShouldContainSubstring, `"code":"backpressure"`)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest("GET", "/events", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_GetAssessment(t *testing.T) {
	Convey("Given the assessment endpoint", t, func() {
		deps := &mockDependencies{
			assessment: model.InstantAssessment{
				AppID:     "com.instagram.android",
				AppName:   "Instagram",
				Risk:      0.9,
				RiskLevel: "HIGH",
			},
		}
		mux := newTestMux(deps)

		Convey("When requesting the latest assessment", func() {
			req := httptest.NewRequest("GET", "/assessment", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the latest assessment is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var got model.InstantAssessment
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.AppName, ShouldEqual, "Instagram")
				So(got.Risk, ShouldEqual, 0.9)
				So(got.RiskLevel, ShouldEqual, "HIGH")
			})
		})
	})
}

func TestServer_GetSessions(t *testing.T) {
	Convey("Given the sessions endpoint", t, func() {
		deps := &mockDependencies{
			sessions: []repository.StoredSession{
				{ID: 2, Record: model.SessionRecord{AppName: "Instagram"}},
				{ID: 1, Record: model.SessionRecord{AppName: "WhatsApp"}},
			},
		}
		mux := newTestMux(deps)

		get := func(target string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("GET", target, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When requesting without a limit", func() {
			w := get("/sessions")

			Convey("Then the default limit applies", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 100)

				var got []repository.StoredSession
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].Record.AppName, ShouldEqual, "Instagram")
			})
		})

		Convey("When requesting with an explicit limit", func() {
			w := get("/sessions?limit=5")

			Convey("Then the limit is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 5)
			})
		})

		Convey("When the limit is not a number", func() {
			So(get("/sessions?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit is not positive", func() {
			So(get("/sessions?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get("/sessions?limit=-3").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			w := get("/sessions?limit=100000")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, `"code":"limit_exceeded"`)
		})

		Convey("When the store read fails", func() {
			deps.sessionsErr = fmt.Errorf("store offline")
			w := get("/sessions")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, `"code":"internal_error"`)
		})
	})
}
