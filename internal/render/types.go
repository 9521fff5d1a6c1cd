package render

// Channel selects the message envelope applied after substitution.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSlack Channel = "slack"
	ChannelTeams Channel = "teams"
)

// Rendered is the outcome of one render call. SuppressSend is set when a
// required value (typically the recipient) could not be resolved; the
// text is still produced so it can be attached for manual follow-up.
// Only the mail path honors the flag, chat messages go out regardless.
type Rendered struct {
	Text         string
	SuppressSend bool
}

// MailSettings are the optional envelope parts for email notifications.
type MailSettings struct {
	Header     string
	Footer     string
	SenderName string
}

// Config carries the timestamp handling knobs of the renderer.
type Config struct {
	// StartTimeVariable is the canonical event start time label.
	StartTimeVariable string
	// StartTimeLayout is the layout the platform writes that value in.
	StartTimeLayout string
	// DisplayLayout and DisplayTimezone control how the start time is
	// shown in rendered messages.
	DisplayLayout   string
	DisplayTimezone string
}
