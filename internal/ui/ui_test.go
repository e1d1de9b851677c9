package ui

import (
	"strings"
	"testing"
)

func TestStyleForElevation(t *testing.T) {
	tests := []struct {
		el   float64
		want string
	}{
		{80, highStyle.Render("x")},
		{30, midStyle.Render("x")},
		{5, lowStyle.Render("x")},
	}

	for _, tt := range tests {
		if got := styleForElevation(tt.el).Render("x"); got != tt.want {
			t.Errorf("el %v: wrong style", tt.el)
		}
	}
}

func TestViewEmpty(t *testing.T) {
	m := Model{}
	v := m.View()

	if !strings.Contains(v, "PRN") {
		t.Error("view missing header")
	}
	if !strings.Contains(v, "no satellites on air") {
		t.Error("view missing empty notice")
	}
}
