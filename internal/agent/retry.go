package agent

import "time"

// retryDelays implements the backoff schedule of spec §4.F.2: status 429
// retries up to 3 times with doubling backoff starting at 1s; status
// ≥500 retries once after 500ms; anything else doesn't retry.
func retryDelays(status int) []time.Duration {
	switch {
	case status == 429:
		return []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	case status >= 500:
		return []time.Duration{500 * time.Millisecond}
	default:
		return nil
	}
}

// sleepOrCancel sleeps for d, polling cancelled every 20ms so a
// cancellation request aborts the retry immediately rather than waiting
// out the full backoff, per spec §4.F.2 ("between sleeps, poll cancel").
func sleepOrCancel(d time.Duration, cancelled func() bool) (didCancel bool) {
	const pollInterval = 20 * time.Millisecond
	elapsed := time.Duration(0)
	for elapsed < d {
		if cancelled != nil && cancelled() {
			return true
		}
		step := pollInterval
		if remaining := d - elapsed; remaining < step {
			step = remaining
		}
		time.Sleep(step)
		elapsed += step
	}
	return false
}
