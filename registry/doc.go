// Package registry implements the capability registry: CRUD and validation
// for agent configuration records, with pluggable persistence (JSON file or
// GORM-backed database).
//
// The registry stores what agents exist. Whether an agent is currently
// connected and callable is the connector package's concern.
package registry
