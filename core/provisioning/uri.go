// Package provisioning builds the otpauth:// URIs conveyed to enrolling
// devices, plus QR renderings of them.
package provisioning

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jdelaire/totpkit/core/otp"
)

// Key describes the credential a provisioning URI advertises. Zero values
// fall back to the Google Authenticator defaults: SHA1, 6 digits, 30-second
// period.
type Key struct {
	// Secret is the encoded secret exactly as it should appear in the URI.
	Secret string

	Algorithm otp.Algorithm
	Digits    int
	Period    time.Duration
}

func (k Key) digits() int {
	if k.Digits == 0 {
		return 6
	}
	return k.Digits
}

func (k Key) period() int {
	if k.Period == 0 {
		return 30
	}
	return int(k.Period / time.Second)
}

// TOTPURL builds the otpauth://totp URI for a credential. The label is the
// account name, prefixed with "issuer:" when issuer is non-empty. Query
// parameters appear in the fixed order secret, issuer, algorithm, digits,
// period; the issuer parameter is omitted when issuer is empty.
//
// The account name must be non-empty, and neither issuer nor account name
// may contain ':', which authenticator apps treat as the label separator.
func TOTPURL(issuer, accountName string, key Key) (string, error) {
	if accountName == "" {
		return "", fmt.Errorf("%w: account name must not be empty", otp.ErrInvalidArgument)
	}
	if strings.ContainsRune(accountName, ':') {
		return "", fmt.Errorf("%w: account name %q must not contain ':'", otp.ErrInvalidArgument, accountName)
	}
	if strings.ContainsRune(issuer, ':') {
		return "", fmt.Errorf("%w: issuer %q must not contain ':'", otp.ErrInvalidArgument, issuer)
	}

	label := url.PathEscape(accountName)
	if issuer != "" {
		label = url.PathEscape(issuer) + ":" + label
	}

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(label)
	b.WriteString("?secret=")
	b.WriteString(url.QueryEscape(key.Secret))
	if issuer != "" {
		b.WriteString("&issuer=")
		b.WriteString(url.QueryEscape(issuer))
	}
	fmt.Fprintf(&b, "&algorithm=%s&digits=%d&period=%d", key.Algorithm, key.digits(), key.period())
	return b.String(), nil
}
