// Package domain contains the core types shared across services, handlers
// and repositories: candidate/role profiles and fit scores for the HR
// copilot, deal scores and training runs for the sales copilot.
package domain
