package provisioning_test

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/jdelaire/totpkit/core/otp"
	"github.com/jdelaire/totpkit/core/provisioning"
)

func TestTOTPURLDefaults(t *testing.T) {
	got, err := provisioning.TOTPURL("Acme", "alice@example.com", provisioning.Key{Secret: "secretKey"})
	if err != nil {
		t.Fatalf("TOTPURL: %v", err)
	}
	want := "otpauth://totp/Acme:alice@example.com?secret=secretKey&issuer=Acme&algorithm=SHA1&digits=6&period=30"
	if got != want {
		t.Errorf("TOTPURL = %q, want %q", got, want)
	}
}

func TestTOTPURLEscaping(t *testing.T) {
	got, err := provisioning.TOTPURL("Acme & <friends>", "alice%23", provisioning.Key{Secret: "secretKey"})
	if err != nil {
		t.Fatalf("TOTPURL: %v", err)
	}
	// Spaces become %20 in the label but + in the query; the label colon
	// stays literal.
	want := "otpauth://totp/Acme%20&%20%3Cfriends%3E:alice%2523?secret=secretKey&issuer=Acme+%26+%3Cfriends%3E&algorithm=SHA1&digits=6&period=30"
	if got != want {
		t.Errorf("TOTPURL = %q, want %q", got, want)
	}
}

func TestTOTPURLWithoutIssuer(t *testing.T) {
	got, err := provisioning.TOTPURL("", "alice", provisioning.Key{Secret: "ABC234"})
	if err != nil {
		t.Fatalf("TOTPURL: %v", err)
	}
	want := "otpauth://totp/alice?secret=ABC234&algorithm=SHA1&digits=6&period=30"
	if got != want {
		t.Errorf("TOTPURL = %q, want %q", got, want)
	}
}

func TestTOTPURLExplicitParameters(t *testing.T) {
	key := provisioning.Key{
		Secret:    "ABC234",
		Algorithm: otp.SHA512,
		Digits:    8,
		Period:    time.Minute,
	}
	got, err := provisioning.TOTPURL("Acme", "alice", key)
	if err != nil {
		t.Fatalf("TOTPURL: %v", err)
	}
	want := "otpauth://totp/Acme:alice?secret=ABC234&issuer=Acme&algorithm=SHA512&digits=8&period=60"
	if got != want {
		t.Errorf("TOTPURL = %q, want %q", got, want)
	}
}

func TestTOTPURLRejections(t *testing.T) {
	cases := []struct {
		name    string
		issuer  string
		account string
	}{
		{"empty account", "Acme", ""},
		{"colon in account", "Acme", "alice:wonderland"},
		{"colon in issuer", "Acme:Inc", "alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := provisioning.TOTPURL(tc.issuer, tc.account, provisioning.Key{Secret: "ABC234"})
			if !errors.Is(err, otp.ErrInvalidArgument) {
				t.Errorf("TOTPURL = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

// Same inputs yield the same URI, byte for byte.
func TestPropTOTPURLIdempotent(t *testing.T) {
	label := rapid.StringMatching(`[A-Za-z0-9 @.%&<>_-]{1,30}`)
	rapid.Check(t, func(t *rapid.T) {
		issuer := rapid.OneOf(rapid.Just(""), label).Draw(t, "issuer")
		account := label.Draw(t, "account")
		secret := rapid.StringMatching(`[A-Z2-7]{16,32}`).Draw(t, "secret")

		first, err := provisioning.TOTPURL(issuer, account, provisioning.Key{Secret: secret})
		if err != nil {
			t.Fatalf("TOTPURL: %v", err)
		}
		second, err := provisioning.TOTPURL(issuer, account, provisioning.Key{Secret: secret})
		if err != nil {
			t.Fatalf("TOTPURL: %v", err)
		}
		if first != second {
			t.Fatalf("TOTPURL not idempotent: %q != %q", first, second)
		}
	})
}
