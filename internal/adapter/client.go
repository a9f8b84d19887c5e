package adapter

// Client is a brokerage client credential record, owned by an external
// surface and read at bootstrap to establish sessions.
type Client struct {
	Name     string `json:"name"`
	UserID   string `json:"userid"`
	Password string `json:"password"`
	PAN      string `json:"pan"`
	APIKey   string `json:"apikey"`
	TOTPKey  string `json:"totpkey"`
}
