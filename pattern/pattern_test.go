package pattern

import (
	"context"
	"testing"
)

// collect drains the cursor into a slice of "addr:port" strings.
func collect(t *testing.T, p *Pattern) []string {
	t.Helper()
	var out []string
	for {
		ap, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, ap.String())
	}
}

func expand(t *testing.T, s string) []string {
	t.Helper()
	p, err := Compile(s)
	if err != nil {
		t.Fatalf("Compile(%q): %v", s, err)
	}
	return collect(t, p)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCompile_SingleLiteral(t *testing.T) {
	got := expand(t, "10.0.0.5:554")
	want := []string{"10.0.0.5:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_DefaultPort(t *testing.T) {
	got := expand(t, "10.0.0.5")
	want := []string{"10.0.0.5:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_OctetRange(t *testing.T) {
	got := expand(t, "192.168.1.{1-3}")
	want := []string{"192.168.1.1:554", "192.168.1.2:554", "192.168.1.3:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_PortRange(t *testing.T) {
	got := expand(t, "10.0.0.1:{8000-8002}")
	want := []string{"10.0.0.1:8000", "10.0.0.1:8001", "10.0.0.1:8002"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_Mask(t *testing.T) {
	got := expand(t, "192.168.1.0/30")
	want := []string{"192.168.1.0:554", "192.168.1.1:554", "192.168.1.2:554", "192.168.1.3:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_Mask32IsIdentity(t *testing.T) {
	got := expand(t, "10.0.0.7/32")
	want := []string{"10.0.0.7:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_Mask0PassesCandidatesThrough(t *testing.T) {
	got := expand(t, "10.0.0.{1-2}/0")
	want := []string{"10.0.0.1:554", "10.0.0.2:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_MaskDeduplicatesBlocks(t *testing.T) {
	// all four candidates share one /30 block, which is emitted once
	got := expand(t, "192.168.1.{0-3}/30")
	want := []string{"192.168.1.0:554", "192.168.1.1:554", "192.168.1.2:554", "192.168.1.3:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_MaskWithPorts(t *testing.T) {
	got := expand(t, "10.0.0.0/31:{554,8554}")
	want := []string{"10.0.0.0:554", "10.0.0.0:8554", "10.0.0.1:554", "10.0.0.1:8554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_CommaList(t *testing.T) {
	got := expand(t, "10.0.0.{1,5,7-8}")
	want := []string{"10.0.0.1:554", "10.0.0.5:554", "10.0.0.7:554", "10.0.0.8:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_NestedBraces(t *testing.T) {
	got := expand(t, "10.{1-2,{3-4}}.0.1")
	want := []string{"10.1.0.1:554", "10.2.0.1:554", "10.3.0.1:554", "10.4.0.1:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_MultiSegmentProduct(t *testing.T) {
	got := expand(t, "10.{1-2}.0.{1-2}:8000")
	want := []string{"10.1.0.1:8000", "10.1.0.2:8000", "10.2.0.1:8000", "10.2.0.2:8000"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	p, err := Compile("192.168.{1-2}.{10-12}:{554,8554}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	first := collect(t, p)
	p.Reset()
	second := collect(t, p)
	if !equal(first, second) {
		t.Errorf("re-expansion differs:\nfirst  %v\nsecond %v", first, second)
	}
	if len(first) != 2*3*2 {
		t.Errorf("expected 12 targets, got %d", len(first))
	}
}

func TestCompile_Errors(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
	}{
		{"inverted octet range", "192.168.1.{5-2}"},
		{"inverted port range", "10.0.0.1:{9000-8000}"},
		{"octet out of range", "300.0.0.1"},
		{"negative octet", "10.0.0.{-1}"},
		{"port out of range", "10.0.0.1:70000"},
		{"too few segments", "10.0.1"},
		{"too many segments", "10.0.0.1.2"},
		{"non-numeric octet", "10.0.x.1"},
		{"non-numeric port", "10.0.0.1:abc"},
		{"unbalanced braces", "10.0.0.{1-3"},
		{"mask too wide", "10.0.0.1/33"},
		{"non-numeric mask", "10.0.0.1/x"},
		{"empty port", "10.0.0.1:"},
		{"empty list element", "10.0.0.{1,,2}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Compile(tc.pattern)
			if err == nil {
				t.Fatalf("Compile(%q) = %v, want error", tc.pattern, collect(t, p))
			}
			if _, ok := err.(*ParseError); !ok {
				t.Errorf("Compile(%q) error type %T, want *ParseError", tc.pattern, err)
			}
		})
	}
}

func TestCount(t *testing.T) {
	cases := []struct {
		pattern string
		want    uint64
	}{
		{"10.0.0.1", 1},
		{"10.0.0.{1-3}:{554,8554}", 6},
		{"192.168.1.0/30", 4},
		{"192.168.{0-1}.0", 2},
	}
	for _, tc := range cases {
		p, err := Compile(tc.pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tc.pattern, err)
		}
		if got := p.Count(); got != tc.want {
			t.Errorf("Count(%q) = %d, want %d", tc.pattern, got, tc.want)
		}
	}
}

func TestTargets_Channel(t *testing.T) {
	p, err := Compile("10.0.0.{1-3}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var got []string
	for ap := range p.Targets(context.Background()) {
		got = append(got, ap.String())
	}
	want := []string{"10.0.0.1:554", "10.0.0.2:554", "10.0.0.3:554"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTargets_Cancellation(t *testing.T) {
	p, err := Compile("10.{0-255}.{0-255}.{0-255}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Targets(ctx)
	if _, ok := <-ch; !ok {
		t.Fatal("channel closed before first target")
	}
	cancel()
	for range ch { //nolint:revive
	}
}

func TestNext_LazyCursor(t *testing.T) {
	// a large range must be consumable one target at a time
	p, err := Compile("10.0.{0-255}.{0-255}")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for i := 0; i < 1000; i++ {
		if _, ok := p.Next(); !ok {
			t.Fatalf("cursor exhausted after %d of 65536 targets", i)
		}
	}
}
