package notification

import (
	"fmt"
	"time"
)

// InvitationSubject is the subject line for member invitation emails.
const InvitationSubject = "Welcome to ATEA Seattle - Complete Your Membership"

// InvitationEmail renders the HTML body of a member invitation.
func InvitationEmail(name, signupLink, membershipID, inviterName string, expiresAt time.Time) string {
	return fmt.Sprintf(`<html>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="text-align: center; margin-bottom: 30px;">
		<h1 style="color: #2c3e50;">ATEA Seattle</h1>
		<p style="color: #666;">Asian Trade &amp; Entrepreneur Association</p>
	</div>

	<p style="font-size: 18px;">Hello %s,</p>

	<p>You have been invited by %s to join ATEA Seattle. Complete your member
	profile to activate your membership.</p>

	<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0;"><strong>Membership ID:</strong> %s</p>
	</div>

	<p style="text-align: center; margin: 30px 0;">
		<a href="%s" style="background: #667eea; color: white; padding: 14px 28px; border-radius: 6px; text-decoration: none; font-weight: 600;">Complete Your Profile</a>
	</p>

	<p>Or copy this link to your browser: %s</p>

	<p style="color: #666;">This invitation expires on %s. If the link stops
	working, contact us for a new one.</p>

	<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666;">
		<p><strong>ATEA Seattle Chapter</strong><br>
		Building bridges, creating opportunities, fostering success</p>
	</div>
</body>
</html>`, name, inviterName, membershipID, signupLink, signupLink, expiresAt.Format("January 2, 2006"))
}

// ActivationEmail renders the HTML body of a plain activation (resend) email.
func ActivationEmail(name, activationLink string, expiresAt time.Time) string {
	return fmt.Sprintf(`<html>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2 style="color: #2c3e50;">Activate Your ATEA Seattle Account</h2>

	<p>Hello %s,</p>

	<p>A new activation link has been issued for your account. Any previous
	links no longer work.</p>

	<p style="text-align: center; margin: 30px 0;">
		<a href="%s" style="background: #667eea; color: white; padding: 14px 28px; border-radius: 6px; text-decoration: none; font-weight: 600;">Activate Account</a>
	</p>

	<p>Or copy this link to your browser: %s</p>

	<p style="color: #666;">This link expires on %s.</p>
</body>
</html>`, name, activationLink, activationLink, expiresAt.Format("January 2, 2006"))
}
