package razorpay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	c := NewClient("rzp_test_key", "rzp_test_secret", url+"/", time.Second)
	c.backoff = time.Millisecond
	return c
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_test_secret", pass)

		raw, _ := io.ReadAll(r.Body)
		var req createOrderRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		assert.EqualValues(t, 95000, req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "ORD-20260310-ABCDEF12", req.Receipt)

		_, _ = w.Write([]byte(`{"id":"order_Q1","amount":95000,"currency":"INR","receipt":"ORD-20260310-ABCDEF12","status":"created"}`))
	}))
	defer srv.Close()

	order, err := newTestClient(srv.URL).CreateOrder(context.Background(), 95000, "INR", "ORD-20260310-ABCDEF12")
	require.NoError(t, err)
	assert.Equal(t, "order_Q1", order.ID)
	assert.EqualValues(t, 95000, order.AmountMinor)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrder_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"order_Q2","amount":100,"currency":"INR","receipt":"r","status":"created"}`))
	}))
	defer srv.Close()

	order, err := newTestClient(srv.URL).CreateOrder(context.Background(), 100, "INR", "r")
	require.NoError(t, err)
	assert.Equal(t, "order_Q2", order.ID)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestCreateOrder_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateOrder(context.Background(), 10, "INR", "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
