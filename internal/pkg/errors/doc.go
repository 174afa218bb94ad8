// Package errors provides typed application errors carrying the error code
// and HTTP status that handlers map into the response envelope.
package errors
