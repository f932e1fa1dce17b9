package scanner

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/dianwoshishi/rtsp-bruter/logger"
)

// Result is one working credential pair found on a target.
type Result struct {
	Target   netip.AddrPort `json:"-"`
	Username string         `json:"username"`
	Password string         `json:"password"`
}

// jsonResult is the JSONL output shape; the target is flattened to a
// string so the line is grep friendly.
type jsonResult struct {
	Target   string `json:"target"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
}

// ResultSet deduplicates findings. The same pair can be discovered by
// several workers when stop-on-success is off.
type ResultSet struct {
	seen map[string]struct{}
}

func NewResultSet() *ResultSet {
	return &ResultSet{seen: make(map[string]struct{})}
}

// Add records a result. It returns false when the exact (target,
// username, password) triple was already registered.
func (rs *ResultSet) Add(r *Result) bool {
	key := r.Target.String() + "\x00" + r.Username + "\x00" + r.Password
	if _, ok := rs.seen[key]; ok {
		return false
	}
	rs.seen[key] = struct{}{}
	return true
}

func (rs *ResultSet) Len() int {
	return len(rs.seen)
}

// URL renders the finding as a connectable RTSP URL with inline
// credentials.
func (r *Result) URL() string {
	return fmt.Sprintf("rtsp://%s:%s@%s/", r.Username, r.Password, r.Target)
}

// RegisterSuccess reports one deduplicated finding on the console and,
// when configured, appends it to the output file as text or JSONL.
func (s *Scanner) RegisterSuccess(r *Result) {
	var line string
	if s.Opts.JSON {
		encoded, err := json.Marshal(jsonResult{
			Target:   r.Target.String(),
			Username: r.Username,
			Password: r.Password,
			URL:      r.URL(),
		})
		if err != nil {
			logger.Debugf("failed to encode result for %s: %v", r.Target, err)
			return
		}
		line = string(encoded)
		logger.Success(line)
	} else {
		line = fmt.Sprintf("[rtsp] %s [%s] [%s]", r.Target, r.Username, r.Password)
		logger.Successf(line)
	}

	if s.Opts.OutputFile != nil {
		s.Opts.FileMutex.Lock()
		_, _ = s.Opts.OutputFile.WriteString(line + "\n")
		s.Opts.FileMutex.Unlock()
	}
}
