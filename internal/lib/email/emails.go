package email

// WelcomeData is what the welcome template renders.
type WelcomeData struct {
	FirstName string
	LastName  string
	Email     string
	Phones    []string
}

// SendWelcomeEmail greets a newly added client.
func (c *Client) SendWelcomeEmail(data WelcomeData) error {
	return c.SendEmail(
		data.Email,
		"Welcome to the client directory",
		TemplateWelcome,
		data,
	)
}
