package validate

import (
	"strings"
	"testing"
)

func TestQuery(t *testing.T) {
	if err := Query(""); err == nil {
		t.Error("empty query should fail")
	}
	if err := Query("what is dark matter?"); err != nil {
		t.Errorf("valid query rejected: %v", err)
	}
	if err := Query(strings.Repeat("x", 2001)); err == nil {
		t.Error("oversized query should fail")
	}
}

func TestNumSources(t *testing.T) {
	for _, n := range []int{0, 1, 10} {
		if err := NumSources(n); err != nil {
			t.Errorf("NumSources(%d) rejected: %v", n, err)
		}
	}
	for _, n := range []int{-1, 11} {
		if err := NumSources(n); err == nil {
			t.Errorf("NumSources(%d) should fail", n)
		}
	}
}

func TestLimit(t *testing.T) {
	got, err := Limit("")
	if err != nil || got != 0 {
		t.Errorf("Limit(\"\") = %d, %v; want 0, nil", got, err)
	}
	got, err = Limit("7")
	if err != nil || got != 7 {
		t.Errorf("Limit(\"7\") = %d, %v", got, err)
	}
	if _, err := Limit("-2"); err == nil {
		t.Error("negative limit should fail")
	}
	if _, err := Limit("abc"); err == nil {
		t.Error("non-numeric limit should fail")
	}
}
