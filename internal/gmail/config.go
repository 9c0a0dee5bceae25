package gmail

// Google OAuth and Gmail API endpoints.
const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
	gmailSendURL   = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"
)

// DefaultScopes are the Gmail API scopes needed to send mail.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.compose",
}

// Config holds Gmail OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	RedirectURI  string
	FromEmail    string
	FromName     string
	Scopes       []string

	// TokenURL and SendURL override the Google endpoints in tests.
	TokenURL string
	SendURL  string
}

// Configured reports whether the OAuth channel can be used: client id,
// secret, and refresh token must all be present.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

func (c Config) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return googleTokenURL
}

func (c Config) sendURL() string {
	if c.SendURL != "" {
		return c.SendURL
	}
	return gmailSendURL
}

func (c Config) scopes() []string {
	if len(c.Scopes) > 0 {
		return c.Scopes
	}
	return DefaultScopes
}

// ConfigReport lists which Gmail settings are present, for the operator
// status endpoint.
type ConfigReport struct {
	Configured   bool     `json:"configured"`
	Issues       []string `json:"issues,omitempty"`
	ClientID     bool     `json:"client_id"`
	ClientSecret bool     `json:"client_secret"`
	RefreshToken bool     `json:"refresh_token"`
	RedirectURI  string   `json:"redirect_uri,omitempty"`
	FromEmail    string   `json:"from_email,omitempty"`
	FromName     string   `json:"from_name,omitempty"`
}

// Report inspects the configuration and names anything missing.
func (c Config) Report() ConfigReport {
	report := ConfigReport{
		ClientID:     c.ClientID != "",
		ClientSecret: c.ClientSecret != "",
		RefreshToken: c.RefreshToken != "",
		RedirectURI:  c.RedirectURI,
		FromEmail:    c.FromEmail,
		FromName:     c.FromName,
	}
	if c.ClientID == "" {
		report.Issues = append(report.Issues, "GOOGLE_CLIENT_ID is not set")
	}
	if c.ClientSecret == "" {
		report.Issues = append(report.Issues, "GOOGLE_CLIENT_SECRET is not set")
	}
	if c.RefreshToken == "" {
		report.Issues = append(report.Issues, "GOOGLE_REFRESH_TOKEN is not set")
	}
	if c.FromEmail == "" {
		report.Issues = append(report.Issues, "GMAIL_FROM_EMAIL is not set")
	}
	report.Configured = len(report.Issues) == 0
	return report
}
