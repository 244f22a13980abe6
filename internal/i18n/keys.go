// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyWarning = "warning"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthForbidden    = "auth.forbidden"

	// Accounts
	KeyAccountNotFound = "account.not_found"
	KeyAccountUpdated  = "account.updated"
	KeyAccountExists   = "account.exists"

	// Music
	KeyMusicNotFound       = "music.not_found"
	KeyMusicRegistered     = "music.registered"
	KeyMusicNotOnChain     = "music.not_on_chain"
	KeyMusicAlreadyOnChain = "music.already_on_chain"
	KeyMusicTipsDisabled   = "music.tips_disabled"

	// Ledger
	KeyLicenseNotFound     = "license.not_found"
	KeyLicenseMinted       = "license.minted"
	KeyRoyaltyPaid         = "royalty.paid"
	KeyRoyaltyClaimed      = "royalty.claimed"
	KeyRoyaltyIPMismatch   = "royalty.ip_mismatch"
	KeyTipSent             = "tip.sent"
	KeyLedgerRefreshFailed = "ledger.refresh_failed"
	KeyLedgerRecordFailed  = "ledger.record_failed"
	KeyChainTxFailed       = "chain.tx_failed"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"
)
