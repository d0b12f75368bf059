package device

import (
	"path/filepath"
	"testing"
)

func TestStore_LoadGeneratesID(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "device.json"))

	id, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if id.ID == "" {
		t.Fatal("no id generated on first use")
	}
	if id.Username != "" {
		t.Errorf("Username = %q, want empty", id.Username)
	}

	again, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != id.ID {
		t.Errorf("id changed between loads: %q then %q", id.ID, again.ID)
	}
}

func TestStore_SetUsername(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "device.json"))

	first, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}

	id, err := s.SetUsername("alice")
	if err != nil {
		t.Fatal(err)
	}
	if id.Username != "alice" {
		t.Errorf("Username = %q, want alice", id.Username)
	}
	if id.ID != first.ID {
		t.Error("SetUsername changed the device id")
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Username != "alice" {
		t.Errorf("persisted Username = %q, want alice", loaded.Username)
	}
}
