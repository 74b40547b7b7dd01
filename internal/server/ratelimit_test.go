package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// Other clients have their own window.
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	assert.True(t, rl.Allow("c"))
	assert.False(t, rl.Allow("c"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("c"))
}

func TestRateLimiterRejectedNotRecorded(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 10; i++ {
		rl.Allow("c")
	}
	assert.Equal(t, 3, rl.Count("c"))
}

func TestSQLInjectionPatterns(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/users?id=1", false},
		{"/users?id=1 OR 1=1", true},
		{"/search?q=union select password from users", true},
		{"/posts?title='; DROP TABLE posts", true},
		{"/notes?body=it's fine", false},
		{"/q?x='--", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeSQLInjection(tt.input, tt.input))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;&quot;x&quot;&#39;s&lt;/b&gt;", Sanitize(`<b>"x"'s</b>`))
}

func TestWebSocketAcceptKey(t *testing.T) {
	// RFC 6455 section 1.3 sample handshake.
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=",
		WebSocketAcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestWebSocketHandshake(t *testing.T) {
	wire := string(WebSocketHandshake("dGhlIHNhbXBsZSBub25jZQ=="))
	assert.Contains(t, wire, "HTTP/1.1 101 Switching Protocols\r\n")
	assert.Contains(t, wire, "Upgrade: websocket\r\n")
	assert.Contains(t, wire, "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n")
}
