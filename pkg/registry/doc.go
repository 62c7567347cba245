// Package registry holds the clinical tool registry and execution engine.
//
// The registry maps tool IDs to ClinicalTool instances; it is built once at
// startup and read-mostly thereafter. The engine wraps every execution in
// the same pipeline: complexity metric, validation gate, timed execution,
// audit entry, chat formatting. Domain failures surface as structured
// results, never as errors, so callers branch on data.
package registry
