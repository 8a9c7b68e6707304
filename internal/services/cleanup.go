package services

import (
	"log"
	"time"
)

// StartOtpCleanup sweeps expired OTP rows once a day at midnight from a
// single goroutine, so two sweeps never overlap. Close stop to shut it down.
func StartOtpCleanup(otps OtpService, stop <-chan struct{}) {
	go func() {
		for {
			timer := time.NewTimer(time.Until(nextMidnight(time.Now())))
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C:
			}
			n, err := otps.CleanupExpired()
			if err != nil {
				log.Printf("[otp][cleanup] sweep failed: %v", err)
				continue
			}
			log.Printf("[otp][cleanup] removed %d expired codes", n)
		}
	}()
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
