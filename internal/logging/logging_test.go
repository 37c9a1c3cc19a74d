package logging

import "testing"

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		logger, err := New(dev, "test")
		if err != nil {
			t.Fatalf("new logger (development=%v): %v", dev, err)
		}
		logger.Info("hello")
		_ = logger.Sync()
	}
}
