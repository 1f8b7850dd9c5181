package mails

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	netmail "net/mail"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

const DefaultApiURL = "https://send.api.mailtrap.io/api/send"

type Mailer struct {
	Dialer *mail.Dialer
	Sender string
}

func New(host string, port int, timeout time.Duration, username, password, sender string) *Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = timeout
	return &Mailer{
		Dialer: dialer,
		Sender: sender,
	}
}

type emailParts struct {
	subject   string
	plainBody string
	htmlBody  string
}

func parseEmailTmpl(tmplName string, tmplData any) (*emailParts, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+tmplName)
	if err != nil {
		return nil, err
	}
	render := func(name string) (string, error) {
		buff := new(bytes.Buffer)
		if err := tmpl.ExecuteTemplate(buff, name, tmplData); err != nil {
			return "", err
		}
		return buff.String(), nil
	}
	var parts emailParts
	if parts.subject, err = render("subject"); err != nil {
		return nil, err
	}
	if parts.plainBody, err = render("plainBody"); err != nil {
		return nil, err
	}
	if parts.htmlBody, err = render("htmlBody"); err != nil {
		return nil, err
	}
	return &parts, nil
}

func (m *Mailer) Send(recipient string, tmplName string, tmplData any) error {
	parts, err := parseEmailTmpl(tmplName, tmplData)
	if err != nil {
		return err
	}
	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.Sender)
	msg.SetHeader("Subject", parts.subject)
	msg.SetBody("text/plain", parts.plainBody)
	msg.AddAlternative("text/html", parts.htmlBody)
	return m.Dialer.DialAndSend(msg)
}

// ApiMailer delivers mail through a Mailtrap compatible HTTP send API.
type ApiMailer struct {
	Client   *http.Client
	URL      string
	ApiToken string
	Sender   string
}

func NewApiMailer(url, apiToken, sender string, timeout time.Duration) *ApiMailer {
	if url == "" {
		url = DefaultApiURL
	}
	return &ApiMailer{
		Client:   &http.Client{Timeout: timeout},
		URL:      url,
		ApiToken: apiToken,
		Sender:   sender,
	}
}

type apiAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type apiPayload struct {
	From    apiAddress   `json:"from"`
	To      []apiAddress `json:"to"`
	Subject string       `json:"subject"`
	Text    string       `json:"text"`
	HTML    string       `json:"html"`
}

func (m *ApiMailer) Send(recipient string, tmplName string, tmplData any) error {
	parts, err := parseEmailTmpl(tmplName, tmplData)
	if err != nil {
		return err
	}
	sender, err := netmail.ParseAddress(m.Sender)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.Sender, err)
	}
	payload, err := json.Marshal(apiPayload{
		From:    apiAddress{Email: sender.Address, Name: sender.Name},
		To:      []apiAddress{{Email: recipient}},
		Subject: parts.subject,
		Text:    parts.plainBody,
		HTML:    parts.htmlBody,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, m.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.ApiToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var bodyParsed struct {
		Errors []string `json:"errors"`
	}
	_ = json.Unmarshal(body, &bodyParsed)
	if len(bodyParsed.Errors) > 0 {
		return fmt.Errorf("failed to send email: %v", bodyParsed.Errors)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("failed to send email: unexpected status %d", resp.StatusCode)
	}
	return nil
}
