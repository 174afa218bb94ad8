// Package repository contains data access implementations for the
// copilot API.
//
// Repositories provide persistence operations for domain entities,
// abstracting the underlying data stores.
//
// # Architecture
//
// Repository interfaces are defined at the service layer (consumer-defined
// interfaces); this package holds the concrete implementations.
//
// # Data Stores
//
// The system uses multiple specialized data stores:
//   - PostgreSQL: Transactional data (candidates, roles, deal scores,
//     scoring models, training runs, API keys)
//   - ClickHouse: Append-only scoring events powering the stats endpoint
//   - Redis: Rate limit counters and the task queue backend
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use.
// Connection pools are managed at the database layer.
package repository
