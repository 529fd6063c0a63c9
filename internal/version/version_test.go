package version

import "testing"

func TestString(t *testing.T) {
	Version, Commit, Date = "v0.3.1", "abc1234", "2026-10-01"
	t.Cleanup(func() { Version, Commit, Date = "dev", "unknown", "unknown" })

	if got, want := String(), "v0.3.1 (commit abc1234, built 2026-10-01)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
