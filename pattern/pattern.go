// Package pattern expands compact address/port specifications into
// concrete scan targets.
//
// A pattern is four dot-separated octet segments, an optional /bits
// mask and an optional :port segment:
//
//	192.168.1.1
//	192.168.1.{1-254}:554
//	10.0.{0,1,2}.1:{554,8554}
//	192.168.1.0/24
//
// Each segment is a single value, a lo-hi range, or a comma-separated
// list of values and ranges, optionally wrapped in braces. Expansion is
// lazy: targets are produced one at a time from a cursor, so a pattern
// covering tens of thousands of endpoints never lives in memory at once.
package pattern

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// DefaultPort is used when a pattern has no port segment.
const DefaultPort = 554

// ParseError describes a malformed pattern. A pattern that fails to
// compile yields no targets at all; there is no partial expansion.
type ParseError struct {
	Pattern string // the full pattern string
	Segment string // the offending segment
	Msg     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid pattern %q: segment %q: %s", e.Pattern, e.Segment, e.Msg)
}

// Pattern is a compiled address/port specification. It doubles as a
// cursor over its own expansion; use Next to pull targets and Reset to
// rewind. A Pattern is not safe for concurrent use.
type Pattern struct {
	raw      string
	octets   [4][]int
	ports    []int
	maskBits int // -1 when no mask present

	// cursor state
	idx         [4]int
	candStarted bool
	candDone    bool
	cur         uint32
	haveAddr    bool
	portIdx     int
	inBlock     bool
	blockBase   uint32
	blockOff    uint32
	blockSize   uint32
	seen        map[uint32]bool
}

// Compile parses a pattern string. Any malformed segment fails the
// whole pattern with a *ParseError.
func Compile(s string) (*Pattern, error) {
	addrPart := s
	portPart := ""
	hasPort := false
	if i := strings.IndexByte(s, ':'); i >= 0 {
		addrPart, portPart = s[:i], s[i+1:]
		hasPort = true
	}

	maskBits := -1
	if i := strings.IndexByte(addrPart, '/'); i >= 0 {
		maskStr := addrPart[i+1:]
		addrPart = addrPart[:i]
		bits, err := strconv.Atoi(maskStr)
		if err != nil || bits < 0 || bits > 32 {
			return nil, &ParseError{Pattern: s, Segment: "/" + maskStr, Msg: "mask bits must be an integer in [0,32]"}
		}
		maskBits = bits
	}

	segs := strings.Split(addrPart, ".")
	if len(segs) != 4 {
		return nil, &ParseError{Pattern: s, Segment: addrPart, Msg: "address must have exactly four octet segments"}
	}

	p := &Pattern{raw: s, maskBits: maskBits}
	for i, seg := range segs {
		vals, err := parseSegment(s, seg, 255)
		if err != nil {
			return nil, err
		}
		p.octets[i] = vals
	}

	if !hasPort {
		p.ports = []int{DefaultPort}
	} else {
		ports, err := parseSegment(s, portPart, 65535)
		if err != nil {
			return nil, err
		}
		p.ports = ports
	}

	p.Reset()
	return p, nil
}

// parseSegment expands one octet or port segment into its ordered,
// deduplicated value list. max is 255 for octets and 65535 for ports.
func parseSegment(pattern, seg string, max int) ([]int, error) {
	if seg == "" {
		return nil, &ParseError{Pattern: pattern, Segment: seg, Msg: "empty segment"}
	}

	inner := seg
	if strings.HasPrefix(inner, "{") {
		if !strings.HasSuffix(inner, "}") {
			return nil, &ParseError{Pattern: pattern, Segment: seg, Msg: "unbalanced braces"}
		}
		inner = inner[1 : len(inner)-1]
	} else if strings.HasSuffix(inner, "}") {
		return nil, &ParseError{Pattern: pattern, Segment: seg, Msg: "unbalanced braces"}
	}

	var vals []int
	seenVal := make(map[int]bool)
	for _, part := range splitList(inner) {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &ParseError{Pattern: pattern, Segment: seg, Msg: "empty list element"}
		}
		// list elements may themselves be brace-wrapped
		if strings.HasPrefix(part, "{") || strings.HasSuffix(part, "}") {
			sub, err := parseSegment(pattern, part, max)
			if err != nil {
				return nil, err
			}
			for _, v := range sub {
				if !seenVal[v] {
					seenVal[v] = true
					vals = append(vals, v)
				}
			}
			continue
		}
		lo, hi, err := parseValueOrRange(pattern, part, max)
		if err != nil {
			return nil, err
		}
		for v := lo; v <= hi; v++ {
			if !seenVal[v] {
				seenVal[v] = true
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return nil, &ParseError{Pattern: pattern, Segment: seg, Msg: "segment expands to no values"}
	}
	return vals, nil
}

func parseValueOrRange(pattern, part string, max int) (int, int, error) {
	if i := strings.IndexByte(part, '-'); i >= 0 {
		loStr, hiStr := part[:i], part[i+1:]
		lo, err := parseBounded(loStr, max)
		if err != nil {
			return 0, 0, &ParseError{Pattern: pattern, Segment: part, Msg: err.Error()}
		}
		hi, err := parseBounded(hiStr, max)
		if err != nil {
			return 0, 0, &ParseError{Pattern: pattern, Segment: part, Msg: err.Error()}
		}
		if lo > hi {
			return 0, 0, &ParseError{Pattern: pattern, Segment: part, Msg: fmt.Sprintf("inverted range %d-%d", lo, hi)}
		}
		return lo, hi, nil
	}
	v, err := parseBounded(part, max)
	if err != nil {
		return 0, 0, &ParseError{Pattern: pattern, Segment: part, Msg: err.Error()}
	}
	return v, v, nil
}

func parseBounded(s string, max int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < 0 || v > max {
		return 0, fmt.Errorf("value %d out of range [0,%d]", v, max)
	}
	return v, nil
}

// splitList splits on top-level commas only, so nested brace groups
// like "1,{2-3,5}" stay intact.
func splitList(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// Reset rewinds the cursor to the first target.
func (p *Pattern) Reset() {
	p.idx = [4]int{}
	p.candStarted = false
	p.candDone = false
	p.haveAddr = false
	p.portIdx = 0
	p.inBlock = false
	p.seen = make(map[uint32]bool)
}

// Next returns the next target in the expansion, or false when the
// pattern is exhausted. Successive full iterations after Reset yield
// identical ordered sequences.
func (p *Pattern) Next() (netip.AddrPort, bool) {
	for {
		if p.haveAddr {
			if p.portIdx < len(p.ports) {
				ap := netip.AddrPortFrom(addrFromU32(p.cur), uint16(p.ports[p.portIdx]))
				p.portIdx++
				return ap, true
			}
			p.haveAddr = false
		}

		if p.inBlock {
			if p.blockOff < p.blockSize {
				p.cur = p.blockBase + p.blockOff
				p.blockOff++
				p.haveAddr = true
				p.portIdx = 0
				continue
			}
			p.inBlock = false
		}

		cand, ok := p.nextCandidate()
		if !ok {
			return netip.AddrPort{}, false
		}

		// /0 accepts every candidate unchanged; without a mask the
		// candidate is the address.
		if p.maskBits <= 0 {
			p.cur = cand
			p.haveAddr = true
			p.portIdx = 0
			continue
		}

		// The mask expands each candidate's network block. Blocks are
		// deduplicated in first-seen order and enumerated ascending, so
		// /32 reproduces the candidates themselves.
		mask := uint32(0xffffffff) << (32 - p.maskBits)
		network := cand & mask
		if p.seen[network] {
			continue
		}
		p.seen[network] = true
		p.inBlock = true
		p.blockBase = network
		p.blockOff = 0
		p.blockSize = uint32(1) << (32 - p.maskBits)
	}
}

// nextCandidate walks the Cartesian product of the four octet value
// lists like an odometer, most significant octet slowest.
func (p *Pattern) nextCandidate() (uint32, bool) {
	if p.candDone {
		return 0, false
	}
	if !p.candStarted {
		p.candStarted = true
	} else {
		i := 3
		for ; i >= 0; i-- {
			p.idx[i]++
			if p.idx[i] < len(p.octets[i]) {
				break
			}
			p.idx[i] = 0
		}
		if i < 0 {
			p.candDone = true
			return 0, false
		}
	}
	var v uint32
	for i := 0; i < 4; i++ {
		v = v<<8 | uint32(p.octets[i][p.idx[i]])
	}
	return v, true
}

// Count estimates the number of targets the pattern expands to, for
// progress reporting. With a mask the estimate assumes all candidates
// fall in distinct network blocks, so it is an upper bound.
func (p *Pattern) Count() uint64 {
	candidates := uint64(1)
	for i := 0; i < 4; i++ {
		candidates *= uint64(len(p.octets[i]))
	}
	addrs := candidates
	if p.maskBits > 0 {
		addrs = candidates * (uint64(1) << (32 - p.maskBits))
		if addrs > 1<<32 {
			addrs = 1 << 32
		}
	}
	return addrs * uint64(len(p.ports))
}

// Targets pumps the expansion into a channel, stopping early when ctx
// is cancelled. The channel is closed when the pattern is exhausted.
func (p *Pattern) Targets(ctx context.Context) <-chan netip.AddrPort {
	out := make(chan netip.AddrPort)
	go func() {
		defer close(out)
		for {
			target, ok := p.Next()
			if !ok {
				return
			}
			select {
			case out <- target:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func addrFromU32(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }
