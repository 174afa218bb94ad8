// Package service contains the business logic layer of the copilot API.
//
// Services coordinate between handlers and repositories, implementing
// domain rules and orchestrating operations across multiple backends.
// Each service handles a specific area: candidate and role profiles,
// semantic matching, role-fit scoring, deal scoring, model training,
// scoring statistics, and API key authentication.
//
// Services depend on small interfaces defined in this package
// (repositories, the embedding client, the vector index, the CRM
// reader), following the dependency inversion principle.
//
// # Thread Safety
//
// All services are safe for concurrent use from multiple goroutines.
package service
