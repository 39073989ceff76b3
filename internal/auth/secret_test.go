package auth

import "testing"

// TestHashSecretRoundTrip проверяет, что hashSecret/verifySecret согласованы
// для одного и того же secret.
func TestHashSecretRoundTrip(t *testing.T) {
	secret := [4]uint32{1, 2, 3, 4}

	hash, err := hashSecret(secret)
	if err != nil {
		t.Fatalf("hashSecret: %v", err)
	}

	ok, deprecated, err := verifySecret(hash, secret)
	if err != nil {
		t.Fatalf("verifySecret: %v", err)
	}
	if !ok {
		t.Fatal("secret did not verify against its own hash")
	}
	if deprecated {
		t.Fatal("freshly hashed secret must not be reported deprecated")
	}
}

func TestVerifySecretRejectsWrongSecret(t *testing.T) {
	hash, err := hashSecret([4]uint32{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("hashSecret: %v", err)
	}

	ok, _, err := verifySecret(hash, [4]uint32{1, 2, 3, 5})
	if err != nil {
		t.Fatalf("verifySecret: %v", err)
	}
	if ok {
		t.Fatal("wrong secret must not verify")
	}
}

// TestVerifySecretVersion0Deprecated проверяет, что version-0 запись
// верифицируется и помечается как устаревшая.
func TestVerifySecretVersion0Deprecated(t *testing.T) {
	secret := [4]uint32{9, 8, 7, 6}
	hash, err := encodeSecret(0, 111, 222, secret)
	if err != nil {
		t.Fatalf("encodeSecret: %v", err)
	}

	ok, deprecated, err := verifySecret(hash, secret)
	if err != nil {
		t.Fatalf("verifySecret: %v", err)
	}
	if !ok {
		t.Fatal("version-0 secret must still verify")
	}
	if !deprecated {
		t.Fatal("version-0 secret must be reported deprecated")
	}
}

// TestRepositoryLoginRehashesDeprecatedSecret — вызов Login дважды подряд
// должен обновить хранимую версию-0 запись до currentSecretVersion (P6).
func TestRepositoryLoginRehashesDeprecatedSecret(t *testing.T) {
	repo := NewTestRepository()
	secret := [4]uint32{1, 1, 1, 1}

	hash, err := encodeSecret(0, 42, 43, secret)
	if err != nil {
		t.Fatalf("encodeSecret: %v", err)
	}
	repo.accounts["alice"] = &Account{Name: "alice", Secret: hash}

	ok, err := repo.Login("alice", secret)
	if err != nil || !ok {
		t.Fatalf("first login failed: ok=%v err=%v", ok, err)
	}

	rehashed := repo.accounts["alice"].Secret
	if rehashed == hash {
		t.Fatal("stored secret was not rehashed after a version-0 match")
	}

	ok, err = repo.Login("alice", secret)
	if err != nil || !ok {
		t.Fatalf("second login failed: ok=%v err=%v", ok, err)
	}
	if repo.accounts["alice"].Secret != rehashed {
		t.Fatal("second login must not change an already-current secret")
	}
}

func TestRepositoryRegisterRejectsDuplicateName(t *testing.T) {
	repo := NewTestRepository()
	secret := [4]uint32{1, 2, 3, 4}

	ok, err := repo.Register("bob", secret)
	if err != nil || !ok {
		t.Fatalf("first register failed: ok=%v err=%v", ok, err)
	}

	ok, err = repo.Register("bob", secret)
	if err != nil {
		t.Fatalf("second register returned error: %v", err)
	}
	if ok {
		t.Fatal("duplicate name must not register")
	}
}
