package client

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateClientRequest is the payload for adding a client.
type CreateClientRequest struct {
	FirstName string   `json:"first_name" validate:"required,max=255"`
	LastName  string   `json:"last_name" validate:"required,max=255"`
	Email     string   `json:"email" validate:"required,max=255"`
	Phones    []string `json:"phones" validate:"omitempty,dive,required,max=32"`
}

func (r *CreateClientRequest) Validate() error {
	return validate.Struct(r)
}

// CreateClientResponse carries the identity assigned to a new client.
type CreateClientResponse struct {
	ID int64 `json:"id"`
}

// ClientIDRequest addresses a single client by path parameter.
type ClientIDRequest struct {
	ID int64 `param:"id" validate:"required,min=1"`
}

func (r *ClientIDRequest) Validate() error {
	return validate.Struct(r)
}

// DeleteClientRequest removes a client. Purge also removes its phones.
type DeleteClientRequest struct {
	ID    int64 `param:"id" validate:"required,min=1"`
	Purge bool  `query:"purge"`
}

func (r *DeleteClientRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateClientRequest is a partial update. Absent JSON fields stay nil.
type UpdateClientRequest struct {
	ID        int64     `param:"id" validate:"required,min=1"`
	FirstName *string   `json:"first_name" validate:"omitempty,min=1,max=255"`
	LastName  *string   `json:"last_name" validate:"omitempty,min=1,max=255"`
	Email     *string   `json:"email" validate:"omitempty,min=1,max=255"`
	Phones    *[]string `json:"phones" validate:"omitempty,dive,required,max=32"`
}

func (r *UpdateClientRequest) Validate() error {
	return validate.Struct(r)
}

// Patch converts the request into a domain patch.
func (r *UpdateClientRequest) Patch() Patch {
	p := Patch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
	if r.Phones != nil {
		p.Phones = append([]string{}, (*r.Phones)...)
	}
	return p
}

// PhoneRequest attaches or detaches one phone number.
// The number travels in the body for POST and in the query for DELETE.
type PhoneRequest struct {
	ClientID int64  `param:"id" validate:"required,min=1"`
	Phone    string `json:"phone" query:"phone" validate:"required,max=32"`
}

func (r *PhoneRequest) Validate() error {
	return validate.Struct(r)
}

// FindClientsRequest binds the optional lookup filters from the query string.
// An empty value matches everything, the same as leaving the filter out.
type FindClientsRequest struct {
	FirstName string `query:"first_name" validate:"max=255"`
	LastName  string `query:"last_name" validate:"max=255"`
	Email     string `query:"email" validate:"max=255"`
	Phone     string `query:"phone" validate:"max=32"`
}

func (r *FindClientsRequest) Validate() error {
	return validate.Struct(r)
}

// Filter converts the request into a domain filter.
func (r *FindClientsRequest) Filter() Filter {
	return Filter{
		FirstName: optional(r.FirstName),
		LastName:  optional(r.LastName),
		Email:     optional(r.Email),
		Phone:     optional(r.Phone),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
