package entrypool

import (
	"errors"
	"strings"
	"testing"
)

func TestGrowth(t *testing.T) {
	testCases := []struct {
		growth   Growth
		size     int
		expected int
		name     string
	}{
		{DoubleGrowth(), 0, 0, "double"},
		{DoubleGrowth(), 7, 7, "double"},
		{DoubleGrowth(), 5000, MaxDoublingStep, "double"},
		{Growth{}, 3, 3, "double"},
		{StepGrowth(4), 0, 4, "step(4)"},
		{StepGrowth(4), 5000, 4, "step(4)"},
	}
	for _, tc := range testCases {
		if got := tc.growth.next(tc.size); got != tc.expected {
			t.Errorf("%v growth from %d: expected %d, got %d", tc.growth, tc.size, tc.expected, got)
		}
		if tc.growth.String() != tc.name {
			t.Errorf("expected name %q, got %q", tc.name, tc.growth.String())
		}
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("Valid config", func(t *testing.T) {
		if err := DefaultConfig(1).Validate(); err != nil {
			t.Errorf("expected a valid config, but got error: %v", err)
		}
	})

	testCases := []struct {
		name                 string
		mutate               func(*Config)
		expectedErrSubstring string
	}{
		{
			"Invalid buffer capacity",
			func(c *Config) { c.BufferCapacity = 0 },
			"invalid config: buffer capacity 0 must be greater than 0",
		},
		{
			"Invalid initial size",
			func(c *Config) { c.InitialSize = -2 },
			"invalid config: initial size -2 must not be negative",
		},
		{
			"Invalid growth step",
			func(c *Config) { c.Growth = StepGrowth(0) },
			"invalid config: growth step 0 must be greater than 0",
		},
		{
			"Invalid recycler size",
			func(c *Config) { c.RecyclerSize = -1 },
			"invalid config: recycler size -1 must not be negative",
		},
	}
	t.Run("Multiple invalid fields", func(t *testing.T) {
		c := DefaultConfig(0)
		c.InitialSize = -1
		c.Growth = StepGrowth(-3)
		err := c.Validate()
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected error %q, got %v", ErrInvalidArgument, err)
		}
		for _, want := range []string{
			"invalid config: buffer capacity 0 must be greater than 0",
			"invalid config: initial size -1 must not be negative",
			"invalid config: growth step -3 must be greater than 0",
		} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error message missing %q: got %q", want, err.Error())
			}
		}
	})

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig(1)
			tc.mutate(&c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected error %q, got %v", ErrInvalidArgument, err)
			}
			if !strings.Contains(err.Error(), tc.expectedErrSubstring) {
				t.Errorf("expected error to contain %q, got %q", tc.expectedErrSubstring, err.Error())
			}
		})
	}
}
