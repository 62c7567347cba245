// Package escalation turns an emergency classification into a prioritized
// sequence of notification and dispatch actions.
//
// Plans execute sequentially in ascending priority order so the incident
// narrative is deterministic for audit replay. A single failed action is
// logged and excluded from the executed list; it never aborts the rest of
// the plan.
package escalation
