package websocket

import (
	"encoding/binary"
	"slices"
)

type CloseCode uint16

// Close codes defined in RFC 6455, section 7.4.1.
const (
	CloseNormalClosure           CloseCode = 1000
	CloseGoingAway               CloseCode = 1001
	CloseProtocolError           CloseCode = 1002
	CloseUnsupportedData         CloseCode = 1003
	CloseNoStatusReceived        CloseCode = 1005
	CloseAbnormalClosure         CloseCode = 1006
	CloseInvalidFramePayloadData CloseCode = 1007
	ClosePolicyViolation         CloseCode = 1008
	CloseMessageTooBig           CloseCode = 1009
	CloseMandatoryExtension      CloseCode = 1010
	CloseInternalServerErr       CloseCode = 1011
	CloseServiceRestart          CloseCode = 1012
	CloseTryAgainLater           CloseCode = 1013
	CloseBadGateway              CloseCode = 1014
	CloseTLSHandshake            CloseCode = 1015
)

// Codes that may appear in a close frame on the wire. 1005, 1006 and 1015
// are reserved for local reporting.
var wireCloseCodes = []CloseCode{
	CloseNormalClosure,
	CloseGoingAway,
	CloseProtocolError,
	CloseUnsupportedData,
	CloseInvalidFramePayloadData,
	ClosePolicyViolation,
	CloseMessageTooBig,
	CloseMandatoryExtension,
	CloseInternalServerErr,
	CloseServiceRestart,
	CloseTryAgainLater,
	CloseBadGateway,
}

// IsValid reports whether c may be sent in a close frame.
func (c CloseCode) IsValid() bool {
	return slices.Contains(wireCloseCodes, c) || c >= 3000 && c <= 4999
}

// CloseMessageData builds a close frame body: the code in network byte
// order followed by the reason.
func CloseMessageData(code CloseCode, reason string) []byte {
	b := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(b, uint16(code))
	copy(b[2:], reason)
	return b
}

// parseCloseData splits a received close body. An empty body reports
// CloseNoStatusReceived. A single byte cannot hold a code and reports
// CloseProtocolError.
func parseCloseData(b []byte) (CloseCode, string) {
	switch len(b) {
	case 0:
		return CloseNoStatusReceived, ""
	case 1:
		return CloseProtocolError, ""
	}
	return CloseCode(binary.BigEndian.Uint16(b)), string(b[2:])
}
