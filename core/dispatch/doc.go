// Package dispatch implements the wave-based mission offer state machine:
// candidate ranking per wave, offer expiry timers, accept/refuse/timeout
// handling and the escalation policy for unconfirmed missions.
package dispatch
