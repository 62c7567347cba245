// Package sandwich implements the local-generation safety sandwich: a
// pre-check, an optional generation step, and a post-check, followed by a
// deterministic final routing decision.
//
// The pipeline is linear with no loops or retries. Each stage is allowed
// to fail independently; a failed or timed-out stage always means
// "insufficient evidence to serve locally", never "serve anyway". Shadow
// mode runs everything for data collection but can never produce a
// serve_local decision.
package sandwich
