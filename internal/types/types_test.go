package types

import "testing"

func TestLabelForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  Label
	}{
		{0, LabelNeutral},
		{0.1, LabelNeutral},
		{-0.1, LabelNeutral},
		{0.1000001, LabelPositive},
		{-0.1000001, LabelNegative},
		{0.05, LabelNeutral},
		{-0.05, LabelNeutral},
		{1, LabelPositive},
		{-1, LabelNegative},
	}

	for _, c := range cases {
		if got := LabelForScore(c.score); got != c.want {
			t.Errorf("LabelForScore(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, -1, 1); got != 1 {
		t.Errorf("Expected 1, got %v", got)
	}
	if got := Clamp(-1.5, -1, 1); got != -1 {
		t.Errorf("Expected -1, got %v", got)
	}
	if got := Clamp(0.5, -1, 1); got != 0.5 {
		t.Errorf("Expected 0.5, got %v", got)
	}
}
