package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a job on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobNotFound is returned for an unknown job name
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyRegistered is returned when a name is registered twice
	ErrJobAlreadyRegistered = errors.New("job already registered")

	// ErrJobInProgress is returned by RunNow while the job is still running
	ErrJobInProgress = errors.New("job already in progress")

	// ErrInvalidConfig is returned when a cron spec cannot be parsed
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
