package crypto

import (
	"bytes"
	"testing"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestSealOpenRoundTrip(t *testing.T) {
	k, err := NewKeyring("k1", map[string][]byte{"k1": testKey(0x01)})
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}

	record, err := k.Seal("session-token-value")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if record == "session-token-value" {
		t.Fatalf("sealed record must not be the plaintext")
	}

	out, err := k.Open(record)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if out != "session-token-value" {
		t.Fatalf("expected original value, got %q", out)
	}
}

func TestOpenAfterRotation(t *testing.T) {
	old, err := NewKeyring("old", map[string][]byte{"old": testKey(0x01)})
	if err != nil {
		t.Fatalf("old keyring: %v", err)
	}
	record, err := old.Seal("legacy")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	rotated, err := NewKeyring("new", map[string][]byte{
		"old": testKey(0x01),
		"new": testKey(0x02),
	})
	if err != nil {
		t.Fatalf("rotated keyring: %v", err)
	}

	out, err := rotated.Open(record)
	if err != nil {
		t.Fatalf("open under retired key: %v", err)
	}
	if out != "legacy" {
		t.Fatalf("expected legacy value, got %q", out)
	}
}

func TestOpenRejectsUnknownKeyAndGarbage(t *testing.T) {
	k, err := NewKeyring("k1", map[string][]byte{"k1": testKey(0x01)})
	if err != nil {
		t.Fatalf("new keyring: %v", err)
	}

	if _, err := k.Open("nope"); err == nil {
		t.Fatalf("expected error for malformed record")
	}
	if _, err := k.Open("ghost.AAAA.AAAA"); err == nil {
		t.Fatalf("expected error for unknown key id")
	}
}

func TestNewKeyringValidation(t *testing.T) {
	if _, err := NewKeyring("", map[string][]byte{"k1": testKey(0x01)}); err == nil {
		t.Fatalf("expected error for empty current id")
	}
	if _, err := NewKeyring("k2", map[string][]byte{"k1": testKey(0x01)}); err == nil {
		t.Fatalf("expected error for missing current key")
	}
	if _, err := NewKeyring("k1", map[string][]byte{"k1": []byte("short")}); err == nil {
		t.Fatalf("expected error for short key")
	}
}
