package internal

// Identity is the authenticated principal of a request. Authenticators
// attach it to the context; guards read it to admit or reject.
type Identity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Active    bool   `json:"-"`
}
