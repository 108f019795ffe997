package ocpi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"evcdr/entity/cdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushCdr(t *testing.T) {
	var received cdr.Cdr
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cdrs", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"status_code":1000,"timestamp":"2024-03-06T10:00:00Z"}`))
	}))
	defer server.Close()

	done := make(chan error, 1)
	New(server.URL, "secret").PushCdr(&cdr.Cdr{Id: "CDR1", CountryCode: "DE"}, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("push did not finish")
	}
	assert.Equal(t, "CDR1", received.Id)
}

func TestPushCdrRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status_code":1000}`))
	}))
	defer server.Close()

	o := New(server.URL, "secret")
	o.SetRetry(3, time.Millisecond)
	done := make(chan error, 1)
	o.PushCdr(&cdr.Cdr{Id: "CDR1"}, func(err error) {
		done <- err
	})

	require.NoError(t, <-done)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPushCdrRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status_code":2001,"status_message":"invalid cdr"}`))
	}))
	defer server.Close()

	done := make(chan error, 1)
	New(server.URL, "secret").PushCdr(&cdr.Cdr{Id: "CDR1"}, func(err error) {
		done <- err
	})

	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2001")
}
