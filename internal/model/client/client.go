// Package client holds the client directory's domain types and the request
// payloads the HTTP layer binds into them.
package client

// Client is a person record with a unique email and any number of phones.
type Client struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phones    []string `json:"phones"`
}

// Patch describes a partial update of a client.
//
// A nil field is left untouched. Phones follows the same rule: nil keeps the
// current numbers, any non-nil slice (even empty) replaces them wholesale.
type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phones    []string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return !p.HasFields() && p.Phones == nil
}

// HasFields reports whether any client column is set.
func (p Patch) HasFields() bool {
	return p.FirstName != nil || p.LastName != nil || p.Email != nil
}

// Filter narrows a client lookup. Every set field is a case-insensitive
// substring match; unset fields match everything.
type Filter struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

// Ptr returns a pointer to v. Convenient when building a Patch or Filter.
func Ptr[T any](v T) *T {
	return &v
}
