package accesslog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/storefront/internal/entity"
	service "github.com/Additional-Code/storefront/internal/service/accesslog"
	transport "github.com/Additional-Code/storefront/internal/transport/http/accesslog"
)

type fakeGateway struct {
	logs []entity.AccessLog
}

func (g *fakeGateway) Insert(_ context.Context, log *entity.AccessLog) error {
	log.ID = int64(len(g.logs) + 1)
	g.logs = append(g.logs, *log)
	return nil
}

func (g *fakeGateway) CountByIP(_ context.Context) ([]entity.AccessStat, error) {
	counts := make(map[string]int64)
	order := make([]string, 0)
	for _, l := range g.logs {
		if _, seen := counts[l.IP]; !seen {
			order = append(order, l.IP)
		}
		counts[l.IP]++
	}
	stats := make([]entity.AccessStat, 0, len(counts))
	for _, ip := range order {
		stats = append(stats, entity.AccessStat{IP: ip, Hits: counts[ip]})
	}
	return stats, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*echo.Echo, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{}
	svc := service.NewService(service.Params{Gateway: gw})
	e := echo.New()
	transport.Register(e, transport.NewHandler(svc))
	return e, gw
}

func TestRecordAccess(t *testing.T) {
	e, gw := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/logs", nil)
	req.Header.Set("User-Agent", "curl/8.5.0")
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)

	var log struct {
		ID        int64  `json:"id"`
		IP        string `json:"ip"`
		UserAgent string `json:"user_agent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &log))
	assert.Equal(t, int64(1), log.ID)
	assert.Equal(t, "10.0.0.1", log.IP)
	assert.Equal(t, "curl/8.5.0", log.UserAgent)
	require.Len(t, gw.logs, 1)
}

func TestAccessStats(t *testing.T) {
	e, _ := newTestServer(t)

	record := func(ip string) {
		req := httptest.NewRequest(http.MethodPost, "/logs", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	record("10.0.0.1")
	record("10.0.0.1")
	record("10.0.0.2")

	req := httptest.NewRequest(http.MethodGet, "/logs/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var stats []struct {
		IP   string `json:"ip"`
		Hits int64  `json:"hits"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "10.0.0.1", stats[0].IP)
	assert.Equal(t, int64(2), stats[0].Hits)
}
