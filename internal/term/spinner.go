package term

import (
	"os"
	"time"
)

// Spinner is the single persistent background thread owned by IO: every
// tick it overwrites the status row with the next braille frame, and it
// also polls /dev/tty for a bare ESC to set the cross-thread cancel flag
// (spec §4.A, §5).
type Spinner struct {
	io       *IO
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	tty      *os.File
}

// NewSpinner builds a spinner bound to io, ticking at interval (spec
// default 80ms).
func NewSpinner(io *IO, interval time.Duration) *Spinner {
	if interval <= 0 {
		interval = 80 * time.Millisecond
	}
	return &Spinner{io: io, interval: interval, stop: make(chan struct{}), done: make(chan struct{})}
}

// Start launches the background goroutine. Safe to call repeatedly — each
// call after a Stop gets fresh stop/done channels, since the REPL driver
// starts and stops the same Spinner around every permission prompt within
// a turn, not just once per process.
func (s *Spinner) Start() {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err == nil {
		s.tty = tty
	}
	go s.run()
}

// Stop halts the goroutine and blocks until it has exited, per the REPL
// driver's "starts/stops the spinner" hook contract.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
	if s.tty != nil {
		s.tty.Close()
	}
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 0
	cancelling := false
	buf := make([]byte, 1)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.tty != nil && !cancelling {
				if s.pollEscape(buf) {
					cancelling = true
					s.io.RequestCancel()
					s.io.SetStatusLabel("Cancelling...")
				}
			}
			glyph := SpinnerFrames[frame%len(SpinnerFrames)]
			if cancelling {
				glyph = "✗"
			}
			s.io.RenderStatusFrame(glyph)
			frame++
		}
	}
}

// pollEscape does one non-blocking read of /dev/tty; on a 0x1B byte it
// waits up to 100ms for a follow-up byte to disambiguate a CSI/SS3
// sequence from a bare ESC (which is the cancel signal). Any follow-up
// byte found is discarded — the spinner thread only ever needs to detect
// a *bare* ESC; full escape-sequence parsing belongs to the foreground
// LineEditor when it owns stdin.
func (s *Spinner) pollEscape(buf []byte) bool {
	if err := s.tty.SetReadDeadline(time.Now().Add(5 * time.Millisecond)); err != nil {
		return false
	}
	n, err := s.tty.Read(buf)
	if err != nil || n == 0 || buf[0] != 0x1B {
		return false
	}

	if err := s.tty.SetReadDeadline(time.Now().Add(100 * time.Millisecond)); err != nil {
		return true
	}
	followUp := make([]byte, 1)
	n, err = s.tty.Read(followUp)
	if err != nil || n == 0 {
		return true // bare ESC
	}
	return false // part of a longer escape sequence, not a cancel
}
