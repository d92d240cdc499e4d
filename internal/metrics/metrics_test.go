package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/versusleague/internal/model"
)

func TestObserveCommitCountsByType(t *testing.T) {
	m := New()

	m.ObserveCommit(nil)
	m.ObserveCommit([]model.Event{
		{Type: model.EventBattleResult},
		{Type: model.EventBattleResult},
		{Type: model.EventAdminChanged},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("BattleResult")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("AdminChanged")))
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	m := New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/players/{address}", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["address"] == "ghost" {
			w.WriteHeader(http.StatusNotFound)
		}
	})

	for _, p := range []string{"/players/alice", "/players/bob", "/players/ghost"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/players/{address}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/players/{address}", "404")))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.ObserveCommit([]model.Event{{Type: model.EventUpgraded}})

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `vlm_registry_events_total{type="Upgraded"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
