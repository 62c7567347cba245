// Package caregate is the medical control plane: it routes a classified
// clinical query through one of several response paths (deterministic
// clinical calculators, direct retrieval, a pre-check/generate/post-check
// safety sandwich around a local model, or immediate emergency escalation)
// and guarantees every path is observable, auditable, and fails closed
// toward the safest option.
//
// The escalation gate always runs first: an emergency classification
// short-circuits every other path. All components report to the audit and
// metrics sinks uniformly, and no domain failure ever surfaces as an error;
// callers branch on structured result fields.
package caregate
