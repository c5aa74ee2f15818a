package domain

// Profile is the optional prefill read from the session key-value store.
// All fields may be empty; it is a pure input to the checkout draft, not an
// identity.
type Profile struct {
	Name    string
	Email   string
	Phone   string
	Address string
}
