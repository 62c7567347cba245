package domain

import "errors"

// ErrToolNotFound is returned when a tool ID cannot be resolved in the
// registry. It indicates a caller or configuration bug, not bad user input.
var ErrToolNotFound = errors.New("tool not found")

// ErrDuplicateTool is returned when registering a tool whose ID is already
// taken. Tool IDs must be unique per process.
var ErrDuplicateTool = errors.New("duplicate tool id")

// ErrAuditUnavailable is returned when an audit record that must be
// guaranteed recorded could not be persisted.
var ErrAuditUnavailable = errors.New("audit sink unavailable")
