package client

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatch_IsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{LastName: Ptr("Smith")}.IsEmpty())

	// An empty, non-nil phone list still means "replace with nothing".
	assert.False(t, Patch{Phones: []string{}}.IsEmpty())
	assert.False(t, Patch{Phones: []string{}}.HasFields())
}

func TestCreateClientRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateClientRequest
		wantTag string
	}{
		{
			name: "valid with phones",
			req:  CreateClientRequest{FirstName: "John", LastName: "Doe", Email: "john@x.com", Phones: []string{"+1"}},
		},
		{
			name: "valid without phones",
			req:  CreateClientRequest{FirstName: "John", LastName: "Doe", Email: "john@x.com"},
		},
		{
			name:    "missing email",
			req:     CreateClientRequest{FirstName: "John", LastName: "Doe"},
			wantTag: "required",
		},
		{
			name:    "blank phone",
			req:     CreateClientRequest{FirstName: "John", LastName: "Doe", Email: "john@x.com", Phones: []string{""}},
			wantTag: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.wantTag, verrs[0].Tag())
		})
	}
}

func TestUpdateClientRequest_Patch(t *testing.T) {
	phones := []string{"+2", "+3"}
	req := UpdateClientRequest{ID: 1, LastName: Ptr("Smith"), Phones: &phones}
	require.NoError(t, req.Validate())

	p := req.Patch()
	assert.Nil(t, p.FirstName)
	assert.Equal(t, "Smith", *p.LastName)
	assert.Equal(t, []string{"+2", "+3"}, p.Phones)

	// The patch owns its phone slice.
	phones[0] = "+9"
	assert.Equal(t, "+2", p.Phones[0])

	assert.True(t, (&UpdateClientRequest{ID: 1}).Patch().IsEmpty())
}

func TestUpdateClientRequest_RequiresID(t *testing.T) {
	err := (&UpdateClientRequest{LastName: Ptr("Smith")}).Validate()
	require.Error(t, err)
}

func TestFindClientsRequest_Filter(t *testing.T) {
	f := (&FindClientsRequest{FirstName: "jo", Phone: "+1"}).Filter()

	require.NotNil(t, f.FirstName)
	assert.Equal(t, "jo", *f.FirstName)
	assert.Nil(t, f.LastName)
	assert.Nil(t, f.Email)
	require.NotNil(t, f.Phone)
	assert.Equal(t, "+1", *f.Phone)
}

func TestUpdateClientRequest_RejectsEmptyValues(t *testing.T) {
	tests := []struct {
		name      string
		req       UpdateClientRequest
		wantField string
	}{
		{name: "empty first name", req: UpdateClientRequest{ID: 1, FirstName: Ptr("")}, wantField: "FirstName"},
		{name: "empty last name", req: UpdateClientRequest{ID: 1, LastName: Ptr("")}, wantField: "LastName"},
		{name: "empty email", req: UpdateClientRequest{ID: 1, Email: Ptr("")}, wantField: "Email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verrs validator.ValidationErrors
			require.ErrorAs(t, tt.req.Validate(), &verrs)
			assert.Equal(t, tt.wantField, verrs[0].Field())
			assert.Equal(t, "min", verrs[0].Tag())
		})
	}

	assert.NoError(t, (&UpdateClientRequest{ID: 1, Email: Ptr("j@x.com")}).Validate())
}
