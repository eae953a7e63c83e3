package email

// Email is one outgoing message. HTMLBody wins over Body when both are set.
type Email struct {
	From     string
	To       []string
	Cc       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData is the data passed to a template.
type TemplateData map[string]interface{}
