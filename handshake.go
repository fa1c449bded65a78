package websocket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wmdanor/wsengine/internal/base64"
	"github.com/wmdanor/wsengine/internal/sha1"
)

const (
	headerUpgrade     = "Upgrade"
	headerConn        = "Connection"
	headerSecWsKey    = "Sec-WebSocket-Key"
	headerSecWsAccept = "Sec-WebSocket-Accept"

	headerUpgradeValue = "websocket"
	headerConnValue    = "Upgrade"

	statusLine = "HTTP/1.1 101 Switching Protocols"

	// Header lines are matched by this exact, case-sensitive prefix.
	secWsKeyPrefix = headerSecWsKey + ": "

	wsGuid = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"
)

var (
	ErrHandshakeFailure = errors.New("handshake failure")

	// ErrNotUpgradeRequest is returned for requests that do not start with GET.
	// Such requests get no response at all.
	ErrNotUpgradeRequest = errors.New("not an upgrade request")

	ErrMissingKey = errors.New("missing Sec-WebSocket-Key header")
)

// AcceptKey derives the Sec-WebSocket-Accept token for a client key.
func AcceptKey(secWebSocketKey string) string {
	sum := sha1.Sum([]byte(secWebSocketKey + wsGuid))
	return base64.Encode(sum[:])
}

// Negotiate builds the 101 response for a raw opening handshake request.
//
// Only the GET prefix of the request line and the Sec-WebSocket-Key header
// are looked at; Upgrade, Connection and Sec-WebSocket-Version are not
// validated.
func Negotiate(request string) (string, error) {
	if !strings.HasPrefix(request, "GET") {
		return "", ErrNotUpgradeRequest
	}

	key, ok := findKey(request)
	if !ok {
		return "", fmt.Errorf("%w: no line starting with %q", ErrMissingKey, secWsKeyPrefix)
	}

	var b strings.Builder
	b.WriteString(statusLine + "\r\n")
	b.WriteString(headerUpgrade + ": " + headerUpgradeValue + "\r\n")
	b.WriteString(headerConn + ": " + headerConnValue + "\r\n")
	b.WriteString(headerSecWsAccept + ": " + AcceptKey(key) + "\r\n")
	b.WriteString("\r\n")

	return b.String(), nil
}

func findKey(request string) (string, bool) {
	for _, line := range strings.Split(request, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if value, ok := strings.CutPrefix(line, secWsKeyPrefix); ok {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}
