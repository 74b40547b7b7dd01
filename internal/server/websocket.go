package server

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
)

// RFC 6455 handshake GUID.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// WebSocketAcceptKey derives the Sec-WebSocket-Accept value for a client
// key.
func WebSocketAcceptKey(clientKey string) string {
	h := sha1.Sum([]byte(clientKey + websocketGUID))
	return base64.StdEncoding.EncodeToString(h[:])
}

// WebSocketHandshake builds the 101 Switching Protocols response. Only the
// handshake is implemented; no data frames are exchanged afterwards and the
// connection closes like any other.
func WebSocketHandshake(clientKey string) []byte {
	return []byte(fmt.Sprintf(
		"HTTP/1.1 101 Switching Protocols\r\n"+
			"Upgrade: websocket\r\n"+
			"Connection: Upgrade\r\n"+
			"Sec-WebSocket-Accept: %s\r\n\r\n",
		WebSocketAcceptKey(clientKey),
	))
}
