// Package audit captures structured audit events for the user lifecycle and
// publishes them asynchronously. Sinks are interface-driven so tests and
// broker-less deployments use the in-memory variant while production writes
// to Kafka.
package audit

import "time"

// Action names an auditable event.
type Action string

const (
	ActionUserRegistered  Action = "user.registered"
	ActionUserVerified    Action = "user.verified"
	ActionUserPromoted    Action = "user.promoted"
	ActionUserDemoted     Action = "user.demoted"
	ActionUserDeleted     Action = "user.deleted"
	ActionPasswordChanged Action = "user.password_changed"
	ActionLogin           Action = "auth.login"
)

// Event is one append-only audit record.
type Event struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	ActorID   string    `json:"actor_id,omitempty"`
	Subject   string    `json:"subject"`
	RequestID string    `json:"request_id,omitempty"`
	Device    string    `json:"device,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
