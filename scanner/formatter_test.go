package scanner

import (
	"context"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
)

func collectTargets(t *testing.T, sources []string) []netip.AddrPort {
	t.Helper()
	targets := make(chan netip.AddrPort, 1024)
	SendTargets(context.Background(), targets, 554, sources)
	var out []netip.AddrPort
	for target := range targets {
		out = append(out, target)
	}
	return out
}

func TestParseTarget_IPv4WithPort(t *testing.T) {
	target, err := ParseTarget("127.0.0.1:8080", 554)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Port() != 8080 {
		t.Errorf("port = %d, want 8080", target.Port())
	}
	if target.Addr() != netip.MustParseAddr("127.0.0.1") {
		t.Errorf("addr = %v, want 127.0.0.1", target.Addr())
	}
}

func TestParseTarget_IPv4DefaultPort(t *testing.T) {
	target, err := ParseTarget("127.0.0.1", 554)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Port() != 554 {
		t.Errorf("port = %d, want 554", target.Port())
	}
}

func TestParseTarget_IPv6WithPort(t *testing.T) {
	target, err := ParseTarget("[::1]:8554", 554)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Port() != 8554 {
		t.Errorf("port = %d, want 8554", target.Port())
	}
	if target.Addr() != netip.MustParseAddr("::1") {
		t.Errorf("addr = %v, want ::1", target.Addr())
	}
}

func TestParseTarget_InvalidPort(t *testing.T) {
	if _, err := ParseTarget("127.0.0.1:99999", 554); err == nil {
		t.Error("expected error for port > 65535")
	}
	if _, err := ParseTarget("127.0.0.1:0", 554); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestSendTargets_PatternExpansion(t *testing.T) {
	got := collectTargets(t, []string{"10.0.0.{1-3}:8554"})
	want := []netip.AddrPort{
		netip.MustParseAddrPort("10.0.0.1:8554"),
		netip.MustParseAddrPort("10.0.0.2:8554"),
		netip.MustParseAddrPort("10.0.0.3:8554"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d targets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSendTargets_LiteralDefaultPort(t *testing.T) {
	got := collectTargets(t, []string{"192.168.1.1"})
	if len(got) != 1 {
		t.Fatalf("got %d targets, want 1", len(got))
	}
	if got[0] != netip.MustParseAddrPort("192.168.1.1:554") {
		t.Errorf("target = %v, want 192.168.1.1:554", got[0])
	}
}

func TestSendTargets_BadPatternIgnored(t *testing.T) {
	got := collectTargets(t, []string{"10.0.0.{3-1}", "192.168.1.1"})
	if len(got) != 1 {
		t.Fatalf("got %d targets, want 1 (bad pattern skipped)", len(got))
	}
	if got[0] != netip.MustParseAddrPort("192.168.1.1:554") {
		t.Errorf("target = %v, want 192.168.1.1:554", got[0])
	}
}

func TestSendTargets_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.txt")
	content := "192.168.1.1\n\n10.0.0.{1-2}:8000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}

	got := collectTargets(t, []string{path})
	want := []netip.AddrPort{
		netip.MustParseAddrPort("192.168.1.1:554"),
		netip.MustParseAddrPort("10.0.0.1:8000"),
		netip.MustParseAddrPort("10.0.0.2:8000"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d targets, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("target[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSendTargets_MaskedPattern(t *testing.T) {
	got := collectTargets(t, []string{"192.168.1.0/30"})
	if len(got) != 4 {
		t.Fatalf("got %d targets, want 4", len(got))
	}
	if got[0] != netip.MustParseAddrPort("192.168.1.0:554") {
		t.Errorf("first target = %v, want 192.168.1.0:554", got[0])
	}
	if got[3] != netip.MustParseAddrPort("192.168.1.3:554") {
		t.Errorf("last target = %v, want 192.168.1.3:554", got[3])
	}
}

func TestSendTargets_ContextCancellation(t *testing.T) {
	targets := make(chan netip.AddrPort) // unbuffered to block the sender
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		SendTargets(ctx, targets, 554, []string{"10.{0-255}.{0-255}.{0-255}"})
		close(done)
	}()

	var count int
	for range targets {
		count++
	}
	<-done
	if count > 1 {
		t.Errorf("expected <=1 targets with cancelled context, got %d", count)
	}
}
