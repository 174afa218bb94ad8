// Package validator wraps go-playground/validator to give handlers
// consistent, human-readable validation errors for request payloads.
package validator
