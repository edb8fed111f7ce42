package notification

// SendEmailRequest is an arbitrary email sent on behalf of the tenant
type SendEmailRequest struct {
	To      []string `json:"to" binding:"required,min=1,max=20,dive,email"`
	ReplyTo string   `json:"reply_to" binding:"omitempty,email"`
	Subject string   `json:"subject" binding:"required,max=200"`
	HTML    string   `json:"html" binding:"required_without=Text"`
	Text    string   `json:"text" binding:"required_without=HTML"`
}

type SendEmailResponse struct {
	ID       string `json:"id,omitempty"`
	Provider string `json:"provider"`
}
