// Package dto defines request payloads with their validation tags.
package dto
