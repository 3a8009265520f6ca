package grpcweb_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"salon-api/internal/grpcweb"
	"salon-api/internal/handler"
	"salon-api/internal/kv"
	"salon-api/internal/middleware"
	"salon-api/internal/salon"
	"salon-api/internal/session"
	"salon-api/internal/store"
)

func newBridge(t *testing.T, ics ...grpc.UnaryServerInterceptor) http.Handler {
	t.Helper()
	ctx := context.Background()
	m := kv.NewMemory()
	st, err := store.New(ctx, m)
	require.NoError(t, err)
	sessions := session.NewManager(st, m, session.Config{Secret: "test-secret", TTL: time.Hour, MaxAttempts: 3, Lockout: time.Minute})

	ics = append(ics, middleware.Auth(sessions, handler.Rules()))
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(ics...))
	handler.Register(srv, handler.New(salon.New(st, nil), sessions))
	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	b, err := grpcweb.New("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b.Handler()
}

func framed(t *testing.T, msg proto.Message) []byte {
	t.Helper()
	data, err := proto.Marshal(msg)
	require.NoError(t, err)
	out := make([]byte, 5+len(data))
	binary.BigEndian.PutUint32(out[1:5], uint32(len(data)))
	copy(out[5:], data)
	return out
}

// frames splits a grpc-web response into its data payload and trailer text.
func frames(t *testing.T, body []byte) (data []byte, trailer string) {
	t.Helper()
	for len(body) >= 5 {
		n := binary.BigEndian.Uint32(body[1:5])
		chunk := body[5 : 5+n]
		if body[0]&0x80 != 0 {
			trailer = string(chunk)
		} else {
			data = chunk
		}
		body = body[5+n:]
	}
	return data, trailer
}

func post(t *testing.T, h http.Handler, method string, body []byte, headers ...string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, handler.Method(method), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Result()
}

func TestBridgeForwardsCalls(t *testing.T) {
	h := newBridge(t)
	res := post(t, h, "Catalog", framed(t, &structpb.Struct{}))
	require.Equal(t, http.StatusOK, res.StatusCode)

	raw, _ := io.ReadAll(res.Body)
	data, trailer := frames(t, raw)
	assert.Contains(t, trailer, "grpc-status:0")

	var out structpb.Struct
	require.NoError(t, proto.Unmarshal(data, &out))
	assert.Len(t, out.Fields["services"].GetListValue().Values, 9)
}

func TestBridgeRelaysErrors(t *testing.T) {
	h := newBridge(t)
	res := post(t, h, "Dashboard", framed(t, &structpb.Struct{}))
	raw, _ := io.ReadAll(res.Body)
	_, trailer := frames(t, raw)
	assert.Contains(t, trailer, "grpc-status:16", "Unauthenticated")
}

func TestBridgeRejects(t *testing.T) {
	h := newBridge(t)

	res := post(t, h, "Catalog", []byte{0, 0})
	raw, _ := io.ReadAll(res.Body)
	_, trailer := frames(t, raw)
	assert.Contains(t, trailer, "grpc-status:3")

	req := httptest.NewRequest(http.MethodGet, handler.Method("Catalog"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req = httptest.NewRequest(http.MethodPost, handler.Method("Catalog"), strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodOptions, handler.Method("Catalog"), nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBridgeIgnoresClientForwardedFor(t *testing.T) {
	var mu sync.Mutex
	var forwarded []string
	record := func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		mu.Lock()
		forwarded = append(forwarded, md.Get("x-forwarded-for")...)
		mu.Unlock()
		return next(ctx, req)
	}
	rl := middleware.NewRateLimiter(t.Context(), 0.001, 2)
	h := newBridge(t, record, middleware.RateLimit(rl, handler.RateLimited()...))
	creds, err := structpb.NewStruct(map[string]any{"email": "awa@example.com", "password": "wrong"})
	require.NoError(t, err)
	body := framed(t, creds)

	var trailers []string
	for i := range 5 {
		res := post(t, h, "Login", body, "X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		raw, _ := io.ReadAll(res.Body)
		_, trailer := frames(t, raw)
		trailers = append(trailers, trailer)
	}
	assert.Contains(t, trailers[0], "grpc-status:16")
	assert.Contains(t, trailers[1], "grpc-status:16")
	for _, tr := range trailers[2:] {
		assert.Contains(t, tr, "grpc-status:8")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, forwarded, 5)
	for _, ip := range forwarded {
		assert.Equal(t, "192.0.2.1", ip, "the request's peer address is forwarded")
	}
}
