package models

// Caller is the identity quota is tracked against: the account id when the
// request is authenticated, otherwise the client IP.
type Caller struct {
	UserID string
	IP     string
}

func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// Identity is the usage-counter key. The prefixes keep an account id from
// ever colliding with an IP string.
func (c Caller) Identity() string {
	if c.Authenticated() {
		return "user:" + c.UserID
	}
	return "ip:" + c.IP
}
