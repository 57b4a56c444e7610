package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWelcomeEmailBody(t *testing.T) {
	body := WelcomeEmailBody(WelcomeEmail{
		To:       "a@b.com",
		Nome:     "João Silva",
		Email:    "a@b.com",
		Senha:    "a1b2c3d4e5f60718",
		LoginURL: "https://app.imobi-pro.com/login",
	})

	assert.Contains(t, body, "Olá, João Silva!")
	assert.Contains(t, body, "<strong>Login:</strong> a@b.com")
	assert.Contains(t, body, "<strong>Senha:</strong> a1b2c3d4e5f60718")
	assert.Contains(t, body, `href="https://app.imobi-pro.com/login"`)
}

func TestWelcomeEmailBody_EscapesAndFallsBack(t *testing.T) {
	body := WelcomeEmailBody(WelcomeEmail{
		Nome:  `<script>alert("x")</script>`,
		Email: "a@b.com",
		Senha: "s",
	})
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")

	body = WelcomeEmailBody(WelcomeEmail{Email: "a@b.com", Senha: "s"})
	assert.Contains(t, body, "Olá, bem-vindo(a)!")
}
