// Package domain contains the core value objects of the medical control
// plane: tool metadata and execution results, emergency escalation plans,
// and the safety sandwich stage contracts.
//
// Every type here is a plain value; no entity is shared-mutable across
// concurrent requests. The orchestrating components own and construct the
// result objects they return, and callers receive read-only views.
package domain
