// Package scanner drives credential probing: it expands target
// sources, fans (target, credential) jobs out to a bounded worker
// pool, and aggregates outcomes into findings and a run summary.
package scanner

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/dianwoshishi/rtsp-bruter/logger"
	"github.com/dianwoshishi/rtsp-bruter/rtsp"
)

// ProbeFunc performs one authentication exchange. rtsp.Probe is the
// production implementation; tests substitute their own.
type ProbeFunc func(ctx context.Context, dialer rtsp.Dialer, timeout time.Duration, target netip.AddrPort, cred rtsp.Credential) rtsp.Outcome

// Options configures a scan. Usernames, Passwords and Dialer are
// required; everything else has a usable zero value except Concurrency
// and Timeout, which must be positive.
type Options struct {
	Timeout        time.Duration
	Concurrency    int
	Rate           int // attempts per second across all workers, 0 = unlimited
	StopOnSuccess  bool
	JSON           bool
	OutputFileName string
	OutputFile     *os.File
	FileMutex      sync.Mutex
	Usernames      []string
	Passwords      []string
	Dialer         rtsp.Dialer
}

// Job is one (target, credential) attempt.
type Job struct {
	Target     netip.AddrPort
	Credential rtsp.Credential
}

// Scanner executes a scan. Counters are atomics so the progress
// display can read them while workers run.
type Scanner struct {
	Opts  *Options
	Probe ProbeFunc

	Results chan *Result

	Attempts       atomic.Int64
	Successes      atomic.Int64
	Invalid        atomic.Int64
	NetworkErrors  atomic.Int64
	ProtocolErrors atomic.Int64

	limiter    *rate.Limiter
	targetDone sync.Map // netip.AddrPort -> *atomic.Bool
}

// Summary is what a finished run reports.
type Summary struct {
	Attempts       int64
	Found          int
	Invalid        int64
	NetworkErrors  int64
	ProtocolErrors int64
	Elapsed        time.Duration
}

// NewScanner validates options and prepares a Scanner. It opens the
// output file when a name is configured.
func NewScanner(opts *Options) (*Scanner, error) {
	if opts.Concurrency < 1 {
		return nil, errors.New("concurrency must be a positive number")
	}
	if opts.Timeout <= 0 {
		return nil, errors.New("timeout must be a positive duration")
	}
	if opts.Rate < 0 {
		return nil, errors.New("rate must not be negative")
	}
	if len(opts.Usernames) == 0 || len(opts.Passwords) == 0 {
		return nil, errors.New("usernames and passwords must not be empty")
	}
	if opts.Dialer == nil {
		return nil, errors.New("dialer is not configured")
	}

	if opts.OutputFileName != "" && opts.OutputFile == nil {
		f, err := os.Create(opts.OutputFileName)
		if err != nil {
			return nil, err
		}
		opts.OutputFile = f
	}

	s := &Scanner{
		Opts:    opts,
		Probe:   rtsp.Probe,
		Results: make(chan *Result, 256),
	}
	if opts.Rate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.Rate), opts.Rate)
	}
	return s, nil
}

// Stop closes the output file, if any. Safe to call twice.
func (s *Scanner) Stop() {
	if s.Opts.OutputFile != nil {
		_ = s.Opts.OutputFile.Close()
		s.Opts.OutputFile = nil
	}
}

// targetFlag returns the per-target success flag, creating it on first
// use. The flag gates both job production and workers when
// StopOnSuccess is set.
func (s *Scanner) targetFlag(target netip.AddrPort) *atomic.Bool {
	if v, ok := s.targetDone.Load(target); ok {
		return v.(*atomic.Bool)
	}
	v, _ := s.targetDone.LoadOrStore(target, new(atomic.Bool))
	return v.(*atomic.Bool)
}

// Run consumes targets, probes every credential pair against each, and
// blocks until the scan completes or ctx is cancelled. The targets
// channel is produced lazily so enormous expansions never materialize.
func (s *Scanner) Run(ctx context.Context, targets <-chan netip.AddrPort) *Summary {
	start := time.Now()

	jobs := make(chan *Job, 256)
	go s.produce(ctx, targets, jobs)

	var workerWg sync.WaitGroup
	for i := 0; i < s.Opts.Concurrency; i++ {
		workerWg.Add(1)
		go s.worker(ctx, &workerWg, jobs)
	}

	go func() {
		workerWg.Wait()
		close(s.Results)
	}()

	// single aggregator, so output needs no extra locking
	set := NewResultSet()
	for result := range s.Results {
		if !set.Add(result) {
			continue
		}
		s.RegisterSuccess(result)
	}

	return &Summary{
		Attempts:       s.Attempts.Load(),
		Found:          set.Len(),
		Invalid:        s.Invalid.Load(),
		NetworkErrors:  s.NetworkErrors.Load(),
		ProtocolErrors: s.ProtocolErrors.Load(),
		Elapsed:        time.Since(start),
	}
}

// produce enumerates credential pairs per target and feeds the job
// channel. Password-major order so one account is not hammered with
// its whole list back to back.
func (s *Scanner) produce(ctx context.Context, targets <-chan netip.AddrPort, jobs chan<- *Job) {
	defer close(jobs)

	for target := range targets {
		flag := s.targetFlag(target)
	pairs:
		for _, password := range s.Opts.Passwords {
			for _, username := range s.Opts.Usernames {
				if s.Opts.StopOnSuccess && flag.Load() {
					break pairs
				}
				job := &Job{
					Target:     target,
					Credential: rtsp.Credential{Username: username, Password: password},
				}
				select {
				case jobs <- job:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan *Job) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		flag := s.targetFlag(job.Target)
		if s.Opts.StopOnSuccess && flag.Load() {
			continue
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
		}

		logger.Debugf("trying %s:%s on %s", job.Credential.Username, job.Credential.Password, job.Target)

		outcome := s.Probe(ctx, s.Opts.Dialer, s.Opts.Timeout, job.Target, job.Credential)
		s.Attempts.Add(1)

		switch outcome.Kind {
		case rtsp.CredentialValid:
			s.Successes.Add(1)
			flag.Store(true)
			s.Results <- &Result{
				Target:   job.Target,
				Username: job.Credential.Username,
				Password: job.Credential.Password,
			}
		case rtsp.CredentialInvalid:
			s.Invalid.Add(1)
			logger.Verbosef("invalid credential %s:%s on %s", job.Credential.Username, job.Credential.Password, job.Target)
		case rtsp.NetworkError:
			s.NetworkErrors.Add(1)
			logger.Verbosef("network error on %s: %s", job.Target, outcome.Reason)
		case rtsp.ProtocolError:
			s.ProtocolErrors.Add(1)
			logger.Verbosef("protocol error on %s: %s", job.Target, outcome.Reason)
		}
	}
}
