package testkit

import "testing"

var seamValue = 10

func TestSwapRestores(t *testing.T) {
	t.Run("swap", func(t *testing.T) {
		Swap(t, &seamValue, 42)
		if seamValue != 42 {
			t.Fatalf("swap did not apply, got %d", seamValue)
		}
	})
	if seamValue != 10 {
		t.Fatalf("swap did not restore, got %d", seamValue)
	}
}

func TestPanicsAndContain(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
	MustContain(t, "alpha beta gamma", "beta")
}
