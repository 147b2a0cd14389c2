package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestString(t *testing.T) {
	t.Setenv("BOARD_TEST_NAME", " board ")
	if got := String("BOARD_TEST_NAME", "x"); got != "board" {
		t.Fatalf("expected board, got %q", got)
	}
	if got := String("BOARD_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if _, err := RequiredString("BOARD_TEST_MISSING"); err == nil {
		t.Fatal("expected missing required key to fail")
	}
}

func TestPort(t *testing.T) {
	t.Setenv("BOARD_TEST_PORT", "70000")
	if _, err := Port("BOARD_TEST_PORT", "8080"); err == nil {
		t.Fatal("expected out-of-range port to fail")
	}
	if got, err := Port("BOARD_TEST_PORT_MISSING", "8080"); err != nil || got != "8080" {
		t.Fatalf("expected fallback port, got %q %v", got, err)
	}
}

func TestIntBoolList(t *testing.T) {
	t.Setenv("BOARD_TEST_INT", "42")
	t.Setenv("BOARD_TEST_BAD_INT", "forty")
	t.Setenv("BOARD_TEST_BOOL", "off")
	t.Setenv("BOARD_TEST_LIST", "bed-1, ,bed-2,")

	if n, err := Int("BOARD_TEST_INT", 1); err != nil || n != 42 {
		t.Fatalf("expected 42, got %d %v", n, err)
	}
	if _, err := Int("BOARD_TEST_BAD_INT", 1); err == nil {
		t.Fatal("expected parse error")
	}
	if Bool("BOARD_TEST_BOOL", true) {
		t.Fatal("expected off to be false")
	}
	if !Bool("BOARD_TEST_BOOL_MISSING", true) {
		t.Fatal("expected fallback true")
	}
	got := List("BOARD_TEST_LIST", "")
	if len(got) != 2 || got[0] != "bed-1" || got[1] != "bed-2" {
		t.Fatalf("unexpected list %v", got)
	}
}

func TestLoadFile(t *testing.T) {
	defer Reset()
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte("grid_step_minutes: 15\nbed_ids: bed-9\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n, _ := Int("GRID_STEP_MINUTES", 30); n != 15 {
		t.Fatalf("expected file value 15, got %d", n)
	}

	t.Setenv("BED_IDS", "bed-1")
	if got := String("BED_IDS", ""); got != "bed-1" {
		t.Fatalf("expected env to override file, got %q", got)
	}

	if err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}
