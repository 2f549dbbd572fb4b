package email

import "context"

// VerificationMailer adapts a Sender to the identity provider's mailer
// contract for account verification links.
type VerificationMailer struct {
	sender Sender
}

func NewVerificationMailer(sender Sender) *VerificationMailer {
	return &VerificationMailer{sender: sender}
}

func (m *VerificationMailer) SendVerificationLink(ctx context.Context, email, link string) error {
	return m.sender.Send(ctx, VerificationMessage(email, link))
}
