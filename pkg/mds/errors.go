package mds

import "fmt"

// CLIError is returned when the switch rejects a command with a message
// that is not in the benign allow-list for that operation. Cmd carries the
// command string as it was sent; Msg is the device's response verbatim.
type CLIError struct {
	Cmd string
	Msg string
}

func (e *CLIError) Error() string {
	return fmt.Sprintf("command %q failed: %s", e.Cmd, e.Msg)
}

// InvalidModeError reports a mode value outside {basic, enhanced}.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q: valid values are %s, %s", e.Mode, ModeEnhanced, ModeBasic)
}

// InvalidMemberError reports a zone member that cannot be classified.
type InvalidMemberError struct {
	Member string
}

func (e *InvalidMemberError) Error() string {
	return fmt.Sprintf("invalid zone member %q: only pwwn or device-alias members are supported", e.Member)
}

// VsanNotPresentError reports a VSAN id that does not resolve on the switch.
type VsanNotPresentError struct {
	ID int
}

func (e *VsanNotPresentError) Error() string {
	return fmt.Sprintf("vsan %d is not present on the switch", e.ID)
}
