package storage

// Persisted storage keys shared by the session and module stores and the
// HTTP client layer. The two token keys exist alongside the auth-storage
// blob so the transport can read credentials without decoding session state.
const (
	KeyAccessToken   = "accessToken"
	KeyRefreshToken  = "refreshToken"
	KeyAuthStorage   = "auth-storage"
	KeyModuleStorage = "module-storage"
)
