// Package jobs provides scheduled background tasks for the order ledger service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the read side.
//
// # Available Jobs
//
// 1. ProjectionResyncJob - Periodically re-reads authoritative state into the
// client projection, recovering events the best-effort feed dropped.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with the synchronizer
//	jobManager := jobs.NewJobManager(synchronizer, schedule, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The resync job defaults to the cron expression "*/30 * * * * *", once every
// thirty seconds. The feed keeps the projection fresh between runs; the job
// only bounds how long a dropped event can go unnoticed.
//
// # Error Handling
//
// A failed resync is logged and retried on the next tick; the projection keeps
// serving its previous state in the meantime.
package jobs
