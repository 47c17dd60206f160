package utils

import "testing"

func TestPasswordHashAndCheck(t *testing.T) {
	hashed, err := HashPassword("s3cret-Pass!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hashed == "s3cret-Pass!" {
		t.Fatal("password stored in plaintext")
	}

	if !CheckPassword(hashed, "s3cret-Pass!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hashed, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code := GenerateOTPCode()
		if len(code) != 6 {
			t.Fatalf("code %q is not six digits", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q contains a non-digit", code)
			}
		}
	}
}
