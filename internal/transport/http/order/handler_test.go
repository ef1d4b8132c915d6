package order_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/entity"
	service "github.com/Additional-Code/storefront/internal/service/order"
	transport "github.com/Additional-Code/storefront/internal/transport/http/order"
)

type fakeGateway struct {
	nextID int64
	orders map[int64]entity.Order
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: make(map[int64]entity.Order)}
}

func (g *fakeGateway) Insert(_ context.Context, order *entity.Order) error {
	g.nextID++
	order.ID = g.nextID
	g.orders[order.ID] = *order
	return nil
}

func (g *fakeGateway) List(_ context.Context) ([]entity.Order, error) {
	out := make([]entity.Order, 0, len(g.orders))
	for _, o := range g.orders {
		out = append(out, o)
	}
	return out, nil
}

func (g *fakeGateway) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	o, ok := g.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	return &o, nil
}

func (g *fakeGateway) Update(_ context.Context, id int64, patch entity.OrderPatch) (*entity.Order, error) {
	o, ok := g.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	if patch.Product != nil {
		o.Product = *patch.Product
	}
	if patch.Price != nil {
		o.Price = *patch.Price
	}
	o.UpdatedAt = time.Now().UTC()
	g.orders[id] = o
	return &o, nil
}

func (g *fakeGateway) Delete(_ context.Context, id int64) (*entity.Order, error) {
	o, ok := g.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	delete(g.orders, id)
	return &o, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) (*echo.Echo, *fakeGateway) {
	t.Helper()
	gw := newFakeGateway()
	svc := service.NewService(service.Params{
		Gateway: gw,
		Config:  config.Config{},
	})
	e := echo.New()
	transport.Register(e, transport.NewHandler(svc))
	return e, gw
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreateOrder(t *testing.T) {
	t.Run("valid payload returns 201", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := doJSON(e, http.MethodPost, "/orders", `{"product":"Laptop","price":1299.99}`)
		assert.Equal(t, http.StatusCreated, rec.Code)

		env := decode(t, rec)
		assert.True(t, env.Success)

		var order struct {
			ID        int64     `json:"id"`
			Product   string    `json:"product"`
			Price     float64   `json:"price"`
			CreatedAt time.Time `json:"created_at"`
			UpdatedAt time.Time `json:"updated_at"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &order))
		assert.Equal(t, int64(1), order.ID)
		assert.Equal(t, "Laptop", order.Product)
		assert.Equal(t, 1299.99, order.Price)
		assert.Equal(t, order.CreatedAt, order.UpdatedAt)
	})

	t.Run("missing product returns 400", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := doJSON(e, http.MethodPost, "/orders", `{"price":10}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "bad_request", env.Error.Kind)
	})

	t.Run("non-positive price returns 400", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := doJSON(e, http.MethodPost, "/orders", `{"product":"Laptop","price":0}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := doJSON(e, http.MethodPost, "/orders", `{"product":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListOrders(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.JSONEq(t, `[]`, string(env.Data))

	doJSON(e, http.MethodPost, "/orders", `{"product":"Laptop","price":10}`)
	doJSON(e, http.MethodPost, "/orders", `{"product":"Mouse","price":20}`)

	rec = doJSON(e, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &items))
	assert.Len(t, items, 2)
}

func TestGetOrder(t *testing.T) {
	t.Run("returns the created record", func(t *testing.T) {
		e, _ := newTestServer(t)
		created := doJSON(e, http.MethodPost, "/orders", `{"product":"Laptop","price":1299.99}`)
		require.Equal(t, http.StatusCreated, created.Code)

		rec := doJSON(e, http.MethodGet, "/orders/1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, string(decode(t, created).Data), string(decode(t, rec).Data))
	})

	t.Run("unknown id returns 404 naming the id", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := doJSON(e, http.MethodGet, "/orders/99", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "not_found", env.Error.Kind)
		assert.Contains(t, env.Error.Message, "99")
	})

	t.Run("non-numeric id returns 400", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := doJSON(e, http.MethodGet, "/orders/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateOrder(t *testing.T) {
	t.Run("partial update changes only supplied fields", func(t *testing.T) {
		e, gw := newTestServer(t)
		doJSON(e, http.MethodPost, "/orders", `{"product":"Laptop","price":1299.99}`)

		rec := doJSON(e, http.MethodPatch, "/orders/1", `{"price":999.99}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		stored := gw.orders[1]
		assert.Equal(t, "Laptop", stored.Product)
		assert.Equal(t, 999.99, stored.Price)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := doJSON(e, http.MethodPatch, "/orders/5", `{"price":10}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid supplied field returns 400", func(t *testing.T) {
		e, _ := newTestServer(t)
		doJSON(e, http.MethodPost, "/orders", `{"product":"Laptop","price":10}`)

		rec := doJSON(e, http.MethodPatch, "/orders/1", `{"price":-1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteOrder(t *testing.T) {
	e, _ := newTestServer(t)
	doJSON(e, http.MethodPost, "/orders", `{"product":"Laptop","price":10}`)

	rec := doJSON(e, http.MethodDelete, "/orders/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)

	// The record is gone afterwards.
	rec = doJSON(e, http.MethodGet, "/orders/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// And deleting again reports absence.
	rec = doJSON(e, http.MethodDelete, "/orders/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
