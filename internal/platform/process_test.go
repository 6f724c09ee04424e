package platform

import "testing"

func TestSampleSelfReturnsNonZeroGoroutines(t *testing.T) {
	sample, err := SampleSelf()
	if err != nil {
		t.Fatalf("SampleSelf() returned error: %v", err)
	}
	if sample.Goroutines < 1 {
		t.Fatalf("Goroutines = %d; want at least 1 (the test itself)", sample.Goroutines)
	}
	if sample.RSSBytes == 0 {
		t.Fatal("RSSBytes = 0; want a positive resident set size for the running process")
	}
}
