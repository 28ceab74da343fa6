package env

import (
	"testing"
	"time"
)

func TestString_Default(t *testing.T) {
	got := String("MINIONPIPE_ENV_DOES_NOT_EXIST", "fallback")
	if got != "fallback" {
		t.Fatalf("String()=%q, want fallback", got)
	}
}

func TestString_Override(t *testing.T) {
	t.Setenv("MINIONPIPE_ENV_STRING", "value")
	got := String("MINIONPIPE_ENV_STRING", "fallback")
	if got != "value" {
		t.Fatalf("String()=%q, want value", got)
	}
}

func TestIsSet(t *testing.T) {
	if IsSet("MINIONPIPE_ENV_DOES_NOT_EXIST") {
		t.Fatalf("IsSet() true for unset key")
	}
	t.Setenv("MINIONPIPE_ENV_BLANK", "   ")
	if IsSet("MINIONPIPE_ENV_BLANK") {
		t.Fatalf("IsSet() true for blank value")
	}
	t.Setenv("MINIONPIPE_ENV_SET", "x")
	if !IsSet("MINIONPIPE_ENV_SET") {
		t.Fatalf("IsSet() false for set key")
	}
}

func TestDuration(t *testing.T) {
	got, err := Duration("MINIONPIPE_ENV_DOES_NOT_EXIST", 5*time.Second)
	if err != nil {
		t.Fatalf("Duration() err=%v", err)
	}
	if got != 5*time.Second {
		t.Fatalf("Duration()=%v, want 5s", got)
	}

	t.Setenv("MINIONPIPE_ENV_DURATION", "250ms")
	got, err = Duration("MINIONPIPE_ENV_DURATION", 5*time.Second)
	if err != nil {
		t.Fatalf("Duration() err=%v", err)
	}
	if got != 250*time.Millisecond {
		t.Fatalf("Duration()=%v, want 250ms", got)
	}

	t.Setenv("MINIONPIPE_ENV_DURATION_BAD", "not-a-duration")
	if _, err := Duration("MINIONPIPE_ENV_DURATION_BAD", 5*time.Second); err == nil {
		t.Fatalf("Duration() expected error")
	}
}

func TestBool(t *testing.T) {
	got, err := Bool("MINIONPIPE_ENV_DOES_NOT_EXIST", true)
	if err != nil {
		t.Fatalf("Bool() err=%v", err)
	}
	if !got {
		t.Fatalf("Bool()=%v, want true", got)
	}

	t.Setenv("MINIONPIPE_ENV_BOOL", "false")
	got, err = Bool("MINIONPIPE_ENV_BOOL", true)
	if err != nil {
		t.Fatalf("Bool() err=%v", err)
	}
	if got {
		t.Fatalf("Bool()=%v, want false", got)
	}
}

func TestInt(t *testing.T) {
	t.Setenv("MINIONPIPE_ENV_INT", "42")
	got, err := Int("MINIONPIPE_ENV_INT", 7)
	if err != nil {
		t.Fatalf("Int() err=%v", err)
	}
	if got != 42 {
		t.Fatalf("Int()=%d, want 42", got)
	}

	t.Setenv("MINIONPIPE_ENV_INT_BAD", "x")
	if _, err := Int("MINIONPIPE_ENV_INT_BAD", 7); err == nil {
		t.Fatalf("Int() expected error")
	}
}
