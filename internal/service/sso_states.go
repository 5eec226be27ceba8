package service

// CallbackState names a step of the callback state machine. A callback moves
// forward through the states in order; any state may end in StateFailed.
type CallbackState string

const (
	StateReceived         CallbackState = "received"
	StateStateVerified    CallbackState = "state_verified"
	StateCodeExchanged    CallbackState = "code_exchanged"
	StateIdentityFetched  CallbackState = "identity_fetched"
	StateClaimsValidated  CallbackState = "claims_validated"
	StateWhitelistChecked CallbackState = "whitelist_checked"
	StateUserResolved     CallbackState = "user_resolved"
	StateCredentialIssued CallbackState = "credential_issued"
	StateRendered         CallbackState = "rendered"
	StateFailed           CallbackState = "failed"
)
