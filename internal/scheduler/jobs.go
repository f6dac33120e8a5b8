package scheduler

import "context"

const (
	JobOpponentSweep    = "opponent_sweep"
	JobBookingCompleter = "booking_completer"
)

// OpponentSweeper removes opponent posts whose match has started.
type OpponentSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// BookingCompleter marks confirmed bookings in the past as completed.
type BookingCompleter interface {
	CompletePast(ctx context.Context) (int64, error)
}

// RegisterMaintenanceJobs adds both maintenance jobs.  An empty cron
// expression disables the corresponding job.
func RegisterMaintenanceJobs(s *Service, sweeper OpponentSweeper, sweepCron string, completer BookingCompleter, completeCron string) error {
	if sweepCron != "" {
		if _, err := s.AddJob(JobOpponentSweep, sweepCron, sweeper.DeleteExpired); err != nil {
			return err
		}
	}
	if completeCron != "" {
		if _, err := s.AddJob(JobBookingCompleter, completeCron, completer.CompletePast); err != nil {
			return err
		}
	}
	return nil
}
