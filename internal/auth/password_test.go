package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if !strings.HasPrefix(digest, "$2") {
		t.Errorf("digest %q não é bcrypt autodescritivo", digest)
	}

	ok, err := Verify("secret123", digest)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("senha correta deveria verificar")
	}

	ok, err = Verify("outra-senha", digest)
	if err != nil {
		t.Fatalf("Verify senha errada: %v", err)
	}
	if ok {
		t.Error("senha errada não deveria verificar")
	}
}

func TestHashRejectsLongPassword(t *testing.T) {
	// 73 bytes: um acima do limite do bcrypt.
	long := strings.Repeat("a", MaxPasswordBytes+1)

	if _, err := Hash(long); !errors.Is(err, ErrSenhaMuitoLonga) {
		t.Errorf("erro = %v, esperado ErrSenhaMuitoLonga", err)
	}

	// Exatamente 72 bytes ainda é aceito.
	limit := strings.Repeat("a", MaxPasswordBytes)
	if _, err := Hash(limit); err != nil {
		t.Errorf("Hash com 72 bytes: %v", err)
	}
}

func TestHashLimitCountsBytesNotRunes(t *testing.T) {
	// 40 runas de dois bytes somam 80 bytes em UTF-8.
	long := strings.Repeat("ç", 40)
	if len(long) <= MaxPasswordBytes {
		t.Fatal("fixture deveria exceder 72 bytes")
	}

	if _, err := Hash(long); !errors.Is(err, ErrSenhaMuitoLonga) {
		t.Errorf("erro = %v, esperado ErrSenhaMuitoLonga", err)
	}
}
