// Package ports defines the interfaces between the control plane core and
// its external collaborators: the audit sink, the safety classifiers, the
// local generation model, the retrieval service, and the notification
// dispatch transport.
//
// The core depends only on these interfaces; pkg/adapters provides
// implementations for specific backends.
package ports
