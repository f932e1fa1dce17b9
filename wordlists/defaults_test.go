package wordlists

import "testing"

func TestDefaultUsernames(t *testing.T) {
	if len(DefaultUsernames) != 14 {
		t.Errorf("expected 14 default usernames, got %d", len(DefaultUsernames))
	}
	// Check first and last
	if DefaultUsernames[0] != "admin" {
		t.Errorf("expected first username to be 'admin', got %q", DefaultUsernames[0])
	}
	if DefaultUsernames[len(DefaultUsernames)-1] != "888888" {
		t.Errorf("expected last username to be '888888', got %q", DefaultUsernames[len(DefaultUsernames)-1])
	}
}

func TestDefaultPasswords(t *testing.T) {
	if len(DefaultPasswords) != 30 {
		t.Errorf("expected 30 default passwords, got %d", len(DefaultPasswords))
	}
	if DefaultPasswords[0] != "admin" {
		t.Errorf("expected first password to be 'admin', got %q", DefaultPasswords[0])
	}
}

func TestNoDuplicateUsernames(t *testing.T) {
	seen := make(map[string]bool)
	for _, u := range DefaultUsernames {
		if seen[u] {
			t.Errorf("duplicate username: %q", u)
		}
		seen[u] = true
	}
}
