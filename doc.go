// Package websocket is a small RFC 6455 server engine. It performs the
// opening handshake on raw TCP streams, decodes unfragmented frames,
// answers pings, echoes close frames and keeps idle peers alive with
// periodic pings. Server bounds how many connections run at once.
package websocket
