package mailer

import (
	"context"
	"fmt"

	mjmlgo "github.com/Boostport/mjml-go"
	"github.com/osteele/liquid"
)

// emailTemplate holds liquid sources for one transactional email.
// MJML is rendered with liquid first, then compiled to HTML.
type emailTemplate struct {
	Subject string
	MJML    string
	Text    string
}

type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

const layoutHead = `<mjml>
  <mj-head>
    <mj-attributes>
      <mj-all font-family="Helvetica, Arial, sans-serif" />
      <mj-text font-size="15px" line-height="22px" color="#1f2933" />
    </mj-attributes>
  </mj-head>
  <mj-body background-color="#f4f4f5">
    <mj-section background-color="#ffffff" padding="32px 24px">
      <mj-column>`

const layoutFoot = `
        <mj-text font-size="13px" color="#6b7280">The Greez team</mj-text>
      </mj-column>
    </mj-section>
  </mj-body>
</mjml>`

var invitationTemplate = emailTemplate{
	Subject: `{{ company_name }} is invited to list products on Greez`,
	MJML: layoutHead + `
        <mj-text font-size="22px" font-weight="bold">Welcome to Greez</mj-text>
        <mj-text>Hello{% if contact_name != "" %} {{ contact_name }}{% endif %},</mj-text>
        <mj-text>{{ company_name }} has been invited to submit its brand and products to the Greez catalog.</mj-text>
        <mj-button href="{{ invitation_url }}" background-color="#166534">Start your submission</mj-button>
        <mj-text font-size="13px">If the button does not work, open this link: {{ invitation_url }}</mj-text>` + layoutFoot,
	Text: `Hello{% if contact_name != "" %} {{ contact_name }}{% endif %},

{{ company_name }} has been invited to submit its brand and products to the Greez catalog.

Start your submission: {{ invitation_url }}

The Greez team`,
}

var magicCodeTemplate = emailTemplate{
	Subject: `Your Greez sign-in code`,
	MJML: layoutHead + `
        <mj-text font-size="22px" font-weight="bold">Your sign-in code</mj-text>
        <mj-text font-size="28px" letter-spacing="4px">{{ code }}</mj-text>
        <mj-text>The code expires in {{ expires_minutes }} minutes. If you did not request it you can ignore this email.</mj-text>` + layoutFoot,
	Text: `Your Greez sign-in code is {{ code }}

The code expires in {{ expires_minutes }} minutes. If you did not request it you can ignore this email.`,
}

var submissionConfirmedTemplate = emailTemplate{
	Subject: `Your Greez submission is confirmed`,
	MJML: layoutHead + `
        <mj-text font-size="22px" font-weight="bold">Submission confirmed</mj-text>
        <mj-text>Thank you {{ company_name }}. Our team has confirmed your submission of {{ product_count }} product{% if product_count != 1 %}s{% endif %}.</mj-text>
        <mj-text>Approved products will appear on the storefront once they are published.</mj-text>` + layoutFoot,
	Text: `Thank you {{ company_name }}. Our team has confirmed your submission of {{ product_count }} product{% if product_count != 1 %}s{% endif %}.

Approved products will appear on the storefront once they are published.`,
}

type renderer struct {
	engine *liquid.Engine
}

func newRenderer() *renderer {
	return &renderer{engine: liquid.NewEngine()}
}

func (r *renderer) render(ctx context.Context, tpl emailTemplate, data map[string]interface{}) (*renderedEmail, error) {
	subject, err := r.renderString(tpl.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render subject: %w", err)
	}

	mjml, err := r.renderString(tpl.MJML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render mjml: %w", err)
	}

	html, err := mjmlgo.ToHTML(ctx, mjml)
	if err != nil {
		return nil, fmt.Errorf("failed to compile mjml: %w", err)
	}

	text, err := r.renderString(tpl.Text, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}

	return &renderedEmail{Subject: subject, HTML: html, Text: text}, nil
}

func (r *renderer) renderString(source string, data map[string]interface{}) (string, error) {
	out, err := r.engine.ParseAndRenderString(source, liquid.Bindings(data))
	if err != nil {
		return "", err
	}
	return out, nil
}
