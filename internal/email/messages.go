package email

import (
	"fmt"
	"html"
	"strings"
)

// Message builders for the club's transactional mail. Layout and copy
// follow the club's house style: purple header, card body, muted footer.

const (
	brandName    = "OCEM Techies"
	brandColor   = "#7c3aed"
	mutedColor   = "#6b7280"
	cardGradient = "linear-gradient(135deg, #7c3aed 0%, #3b82f6 100%)"
)

func wrapper(tagline, body string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: %s; margin: 0;">%s</h1>
    <p style="color: %s; margin: 5px 0;">%s</p>
  </div>
  %s
</div>`, brandColor, brandName, mutedColor, html.EscapeString(tagline), body)
}

func footerNote(text string) string {
	return fmt.Sprintf(`<div style="text-align: center; margin-top: 30px;">
    <p style="color: %s; font-size: 14px;">%s</p>
  </div>`, mutedColor, html.EscapeString(text))
}

// OTPMessage carries a one-time passcode. The code is rendered large and
// spaced for easy transcription.
func OTPMessage(to, code string) SendParams {
	body := fmt.Sprintf(`<div style="background: %s; padding: 30px; border-radius: 12px; text-align: center; margin: 20px 0;">
    <h2 style="color: white; margin: 0 0 10px 0;">Verification Code</h2>
    <div style="background: white; padding: 15px; border-radius: 8px; display: inline-block; margin: 10px 0;">
      <span style="font-size: 32px; font-weight: bold; color: %s; letter-spacing: 8px;">%s</span>
    </div>
    <p style="color: white; margin: 10px 0 0 0; font-size: 14px;">This code expires in 10 minutes</p>
  </div>`, cardGradient, brandColor, html.EscapeString(code))

	return SendParams{
		To:       to,
		Subject:  "Your OCEM Techies Verification Code",
		BodyHTML: wrapper("Your verification code", body+footerNote("If you didn't request this code, please ignore this email.")),
		BodyText: fmt.Sprintf("Your OCEM Techies verification code is: %s. This code expires in 10 minutes.", code),
		Tag:      "otp",
	}
}

// VerificationMessage carries the account email-verification link.
func VerificationMessage(to, link string) SendParams {
	body := fmt.Sprintf(`<div style="background: %s; padding: 30px; border-radius: 12px; text-align: center; margin: 20px 0;">
    <h2 style="color: white; margin: 0 0 20px 0;">Confirm your email</h2>
    <p style="color: white; margin: 0 0 20px 0;">
      Click the button below to verify your email address and activate your account.
    </p>
    <a href="%s" style="background: white; color: %s; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block; font-weight: bold;">
      Verify Email
    </a>
  </div>`, cardGradient, html.EscapeString(link), brandColor)

	return SendParams{
		To:       to,
		Subject:  "Verify your OCEM Techies account",
		BodyHTML: wrapper("Confirm your email address", body+footerNote("If you didn't create an account, please ignore this email.")),
		BodyText: fmt.Sprintf("Verify your OCEM Techies account: %s", link),
		Tag:      "email-verification",
	}
}

// WelcomeMessage greets a newly registered member.
func WelcomeMessage(to, name string) SendParams {
	body := fmt.Sprintf(`<div style="background: %s; padding: 30px; border-radius: 12px; text-align: center; margin: 20px 0;">
    <h2 style="color: white; margin: 0 0 20px 0;">Welcome %s!</h2>
    <p style="color: white; margin: 0 0 20px 0;">
      You're now part of the OCEM Techies community!
    </p>
    <div style="background: rgba(255,255,255,0.2); padding: 15px; border-radius: 8px; margin: 20px 0;">
      <p style="color: white; margin: 0; font-weight: bold;">
        Login to your dashboard to explore events, resources, and connect with fellow techies.
      </p>
    </div>
  </div>`, cardGradient, html.EscapeString(name))

	return SendParams{
		To:       to,
		Subject:  "Welcome to OCEM Techies!",
		BodyHTML: wrapper("Welcome to the Community!", body),
		BodyText: fmt.Sprintf("Welcome %s! You're now part of the OCEM Techies community.", name),
		Tag:      "welcome",
	}
}

// EventRegistrationMessage confirms a member's event registration.
func EventRegistrationMessage(to, name, eventTitle, eventDate, venue string) SendParams {
	body := fmt.Sprintf(`<div style="background: #f8fafc; padding: 30px; border-radius: 12px; margin: 20px 0;">
    <h2 style="color: #1f2937; margin: 0 0 20px 0;">Hi %s!</h2>
    <p style="color: #4b5563; margin: 0 0 20px 0;">
      You have successfully registered for the following event:
    </p>
    <div style="background: white; padding: 20px; border-radius: 8px; border-left: 4px solid %s;">
      <h3 style="color: %s; margin: 0 0 10px 0;">%s</h3>
      <p style="color: %s; margin: 5px 0;"><strong>Date:</strong> %s</p>
      <p style="color: %s; margin: 5px 0;"><strong>Venue:</strong> %s</p>
    </div>
    <p style="color: #4b5563; margin: 20px 0 0 0;">
      We'll send you a reminder 24 hours before the event. See you there!
    </p>
  </div>`, html.EscapeString(name), brandColor, brandColor, html.EscapeString(eventTitle),
		mutedColor, html.EscapeString(eventDate), mutedColor, html.EscapeString(venue))

	return SendParams{
		To:       to,
		Subject:  "Registration Confirmed: " + eventTitle,
		BodyHTML: wrapper("Event Registration Confirmed", body+footerNote("Questions? Reply to this email or contact us at info@ocemtechies.com")),
		BodyText: fmt.Sprintf("Hi %s, you have successfully registered for %s on %s at %s.", name, eventTitle, eventDate, venue),
		Tag:      "event-registration",
	}
}

// ContactNotificationMessage forwards a contact-form submission to the
// club admins.
func ContactNotificationMessage(adminEmail, name, fromEmail, subject, message string) SendParams {
	htmlMessage := strings.ReplaceAll(html.EscapeString(message), "\n", "<br>")
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: %s;">New Contact Form Submission</h2>
  <div style="background: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p><strong>Name:</strong> %s</p>
    <p><strong>Email:</strong> %s</p>
    <p><strong>Subject:</strong> %s</p>
    <p><strong>Message:</strong></p>
    <div style="background: white; padding: 15px; border-radius: 6px; margin-top: 10px;">%s</div>
  </div>
</div>`, brandColor, html.EscapeString(name), html.EscapeString(fromEmail), html.EscapeString(subject), htmlMessage)

	return SendParams{
		To:       adminEmail,
		Subject:  "Contact Form: " + subject,
		BodyHTML: body,
		BodyText: fmt.Sprintf("New contact form submission from %s (%s): %s", name, fromEmail, message),
		Tag:      "contact-form",
	}
}
