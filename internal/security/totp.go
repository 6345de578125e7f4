package security

import (
	"github.com/pquerna/otp/totp"
)

// GenerateTOTPSecret provisions a new TOTP key for the account and returns
// the shared secret plus the otpauth:// URL for enrollment.
func GenerateTOTPSecret(accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "PaintSnap",
		AccountName: accountName,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// ValidateTOTP checks a submitted code against the stored secret.
func ValidateTOTP(secret, code string) bool {
	return totp.Validate(code, secret)
}
