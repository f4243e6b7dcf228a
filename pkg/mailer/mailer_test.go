package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/greez/greez/pkg/logger"
)

func testConfig() *Config {
	return &Config{
		SMTPHost:   "smtp.greez.test",
		SMTPPort:   587,
		FromEmail:  "hello@greez.test",
		FromName:   "Greez",
		PartnerURL: "https://partners.greez.test",
	}
}

func TestConfig_InvitationURL(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "https://partners.greez.test/invitation?token=abc_123", cfg.InvitationURL("abc_123"))
	assert.Equal(t, "https://partners.greez.test/invitation?token=a%2Bb", cfg.InvitationURL("a+b"))
}

func TestRenderer_Invitation(t *testing.T) {
	r := newRenderer()

	out, err := r.render(context.Background(), invitationTemplate, map[string]interface{}{
		"company_name":   "Acme",
		"contact_name":   "Jo",
		"invitation_url": "https://partners.greez.test/invitation?token=tok",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme is invited to list products on Greez", out.Subject)
	assert.Contains(t, out.HTML, "<html")
	assert.Contains(t, out.HTML, "Start your submission")
	assert.Contains(t, out.Text, "Hello Jo,")
	assert.Contains(t, out.Text, "https://partners.greez.test/invitation?token=tok")
}

func TestRenderer_InvitationWithoutContact(t *testing.T) {
	r := newRenderer()

	out, err := r.render(context.Background(), invitationTemplate, map[string]interface{}{
		"company_name":   "Acme",
		"contact_name":   "",
		"invitation_url": "https://x",
	})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Hello,")
}

func TestRenderer_SubmissionConfirmedPluralization(t *testing.T) {
	r := newRenderer()

	one, err := r.render(context.Background(), submissionConfirmedTemplate, map[string]interface{}{
		"company_name":  "Acme",
		"product_count": 1,
	})
	require.NoError(t, err)
	assert.Contains(t, one.Text, "1 product.")

	two, err := r.render(context.Background(), submissionConfirmedTemplate, map[string]interface{}{
		"company_name":  "Acme",
		"product_count": 2,
	})
	require.NoError(t, err)
	assert.Contains(t, two.Text, "2 products.")
}

func TestSMTPMailer_TestModeCapturesMessages(t *testing.T) {
	m := NewTestSMTPMailer(testConfig(), logger.NewMockLogger(t))
	ctx := context.Background()

	require.NoError(t, m.SendPartnerInvitation(ctx, "a@acme.com", "Acme", "", "tok"))
	require.NoError(t, m.SendMagicCode(ctx, "staff@greez.test", "123456"))
	require.NoError(t, m.SendSubmissionConfirmed(ctx, "a@acme.com", "Acme", 2))

	sent := m.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, []string{"Acme is invited to list products on Greez"}, sent[0].GetGenHeader(mail.HeaderSubject))
	assert.Equal(t, []string{"Your Greez sign-in code"}, sent[1].GetGenHeader(mail.HeaderSubject))
	assert.Equal(t, []string{"Your Greez submission is confirmed"}, sent[2].GetGenHeader(mail.HeaderSubject))
}

func TestSMTPMailer_InvalidRecipient(t *testing.T) {
	m := NewTestSMTPMailer(testConfig(), logger.NewMockLogger(t))

	err := m.SendMagicCode(context.Background(), "not-an-email", "123456")
	assert.Error(t, err)
	assert.Empty(t, m.Sent())
}

func TestConsoleMailer(t *testing.T) {
	log := logger.NewTestLogger(t)
	m := NewConsoleMailer(testConfig(), log)
	ctx := context.Background()

	require.NoError(t, m.SendPartnerInvitation(ctx, "a@acme.com", "Acme", "Jo", "tok"))
	require.NoError(t, m.SendMagicCode(ctx, "staff@greez.test", "123456"))
	require.NoError(t, m.SendSubmissionConfirmed(ctx, "a@acme.com", "Acme", 2))

	entries := log.EntriesAt("info")
	require.Len(t, entries, 3)
	assert.Equal(t, "https://partners.greez.test/invitation?token=tok", entries[0].Fields["invitation_url"])
	assert.Equal(t, "123456", entries[1].Fields["code"])
	assert.Equal(t, 2, entries[2].Fields["product_count"])
}
