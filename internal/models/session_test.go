package models

import "testing"

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusInitialized, StatusFunded, StatusRefunded, StatusSettled, StatusPendingFiat}

	allowed := map[[2]Status]bool{
		{StatusInitialized, StatusFunded}: true,
		{StatusFunded, StatusRefunded}:    true,
		{StatusFunded, StatusSettled}:     true,
		{StatusFunded, StatusPendingFiat}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusInitialized, false},
		{StatusFunded, false},
		{StatusRefunded, true},
		{StatusSettled, true},
		{StatusPendingFiat, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for status, name := range statusNames {
		got, err := ParseStatus(name)
		if err != nil {
			t.Fatalf("ParseStatus(%q) failed: %v", name, err)
		}
		if got != status {
			t.Errorf("ParseStatus(%q) = %s, want %s", name, got, status)
		}
	}

	if _, err := ParseStatus("cancelled"); err == nil {
		t.Error("Expected error for unknown status, got nil")
	}
	if Status(42).Valid() {
		t.Error("Expected status(42) to be invalid")
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	funded := int64(100)
	s := &Session{Amount: 10, FundedAt: &funded}

	c := s.Clone()
	*c.FundedAt = 200
	c.Amount = 20

	if *s.FundedAt != 100 {
		t.Errorf("Clone shares FundedAt: original now %d", *s.FundedAt)
	}
	if s.Amount != 10 {
		t.Errorf("Clone shares Amount: original now %d", s.Amount)
	}
}

func TestSessionExpired(t *testing.T) {
	s := &Session{Status: StatusInitialized, ExpiryAt: 1000}

	if s.Expired(1000) {
		t.Error("Session should not be expired at its expiry instant")
	}
	if !s.Expired(1001) {
		t.Error("Session should be expired after its expiry instant")
	}

	s.Status = StatusFunded
	if s.Expired(5000) {
		t.Error("Funded sessions are never reported as expired")
	}
}
