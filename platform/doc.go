// Package platform provides the collaborators the throttle engine runs on:
// a real-time event loop, a deterministic virtual clock and an in-memory
// viewport fed by remote clients or scripted scenarios.
package platform
