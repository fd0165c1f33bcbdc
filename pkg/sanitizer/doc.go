// Package sanitizer normalizes free-text input before validation and
// storage.
//
// All functions are idempotent: applying them twice gives the same result
// as applying them once. Invalid input is never an error here, it collapses
// to an empty string or is dropped from a slice.
package sanitizer
