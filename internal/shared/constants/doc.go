// Package constants centralizes defaults shared by the CLI, the API server and
// the scan engine.
//
// Fetch timeouts, body caps and rate-limit allowances live here so cmd/ and
// internal/ reference one value without introducing import cycles.
package constants
