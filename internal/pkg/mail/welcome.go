package mail

import (
	"fmt"
	"html"
	"strings"
)

const welcomeSubject = "Seu acesso ao ImobiPro está pronto ✅"

// WelcomeEmail carries everything the credential email needs. Senha is the
// plaintext one-time password; it is never persisted anywhere else.
type WelcomeEmail struct {
	To       string
	Nome     string
	Email    string
	Senha    string
	LoginURL string
}

// WelcomeEmailBody renders the HTML credential email sent to a freshly
// provisioned corretor.
func WelcomeEmailBody(in WelcomeEmail) string {
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		nome = "bem-vindo(a)"
	}

	return fmt.Sprintf(`
  <div style="font-family:Arial,sans-serif;line-height:1.5;color:#0f172a">
    <h2>Olá, %s!</h2>
    <p>Seu acesso ao <strong>ImobiPro</strong> foi criado com sucesso.</p>

    <div style="background:#f1f5f9;padding:14px;border-radius:12px">
      <p style="margin:0"><strong>Login:</strong> %s</p>
      <p style="margin:0"><strong>Senha:</strong> %s</p>
    </div>

    <p style="margin-top:16px">
      Acesse aqui: <a href="%s">%s</a>
    </p>

    <p style="font-size:12px;color:#64748b">
      Recomendamos alterar sua senha no primeiro acesso.
    </p>
  </div>`,
		html.EscapeString(nome),
		html.EscapeString(in.Email),
		html.EscapeString(in.Senha),
		in.LoginURL,
		html.EscapeString(in.LoginURL),
	)
}

// SMTPMailer sends the welcome email through the configured SMTP relay.
type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) SendWelcomeEmail(in WelcomeEmail) error {
	if err := SendMail(in.To, welcomeSubject, WelcomeEmailBody(in)); err != nil {
		return fmt.Errorf("falha ao enviar e-mail: %w", err)
	}
	return nil
}
