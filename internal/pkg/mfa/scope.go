package mfa

// Purpose identifies the MFA encryption purpose.
type Purpose string

// PurposeOTPSeed scopes encryption to TOTP shared secrets.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds encryption to MFA-specific identifiers.
// This is used as AAD (Additional Authenticated Data) in AES-GCM.
type Scope struct {
	// UserID is the owner of the protected value.
	UserID string
	// Purpose is the encryption purpose.
	Purpose Purpose
}

// OTPSeedScope returns the scope used for a user's TOTP secret.
func OTPSeedScope(userID string) Scope {
	return Scope{UserID: userID, Purpose: PurposeOTPSeed}
}
