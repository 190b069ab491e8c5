package domain

// StunServer is handed to clients as-is.
type StunServer struct {
	URL string `json:"url" mapstructure:"url"`
}

// RelayCredential is a time-boxed TURN credential. Username embeds the expiry timestamp.
type RelayCredential struct {
	Username   string `json:"username"`
	Credential string `json:"credential"`
	URL        string `json:"url"`
}
