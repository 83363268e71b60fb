package at

const (
	// Terminal Control
	CR   = "\r"
	LF   = "\n"
	CRLF = "\r\n"

	// Break is the pseudo break byte that wakes the modem from sleep.
	Break byte = 0xFF

	// Response Codes
	OK    = "OK"
	ERROR = "ERROR"

	// DownlinkPrefix marks a downlink line ("RX=01 02 03").
	DownlinkPrefix = "RX="
)

// Commands understood by Wisol Sigfox modems.
const (
	CmdAt          = "AT"
	CmdID          = "AT$I=10"
	CmdPAC         = "AT$I=11"
	CmdPowerMode   = "AT$P="
	CmdSendBit     = "AT$SB="
	CmdSendFrame   = "AT$SF="
	CmdSetRepeat   = "AT$TR="
	CmdGetRepeat   = "AT$TR?"
	CmdTemperature = "AT$T?"
	CmdVoltage     = "AT$V?"
)

// Profile is the line-ending convention used on the wire. It is chosen once
// per connection; mixing profiles on a single link is not supported.
type Profile struct {
	// Name identifies the profile in configuration and logs.
	Name string
	// CommandTerminator is appended to every command, frames included.
	CommandTerminator string
	// AckTerminated requires the OK acknowledgment to be a complete line.
	// When false, OK matches as soon as both bytes are received.
	AckTerminated bool
}

var (
	// ProfileA terminates commands with CR and expects "OK\n" acknowledgments.
	ProfileA = Profile{Name: "a", CommandTerminator: CR, AckTerminated: true}

	// ProfileB terminates commands with CRLF and matches a bare "OK".
	ProfileB = Profile{Name: "b", CommandTerminator: CRLF, AckTerminated: false}
)

// LookupProfile returns the profile registered under name.
func LookupProfile(name string) (Profile, bool) {
	switch name {
	case ProfileA.Name, "":
		return ProfileA, true
	case ProfileB.Name:
		return ProfileB, true
	}
	return Profile{}, false
}

func (p Profile) String() string {
	return "profile " + p.Name
}
