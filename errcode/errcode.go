package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable), shared verbatim between the host
// supervisor and the MCU firmware so a failure logged on either side carries
// the same vocabulary.
const (
	OK Code = "ok"

	OutOfRange            Code = "out_of_range"
	AdcReadFailure        Code = "adc_read_failure"
	ValveSenseReadFailure Code = "valve_sense_read_failure"
	PortNotFound          Code = "port_not_found"
	PortOpenFailure       Code = "port_open_failure"
	ReadWriteFailure      Code = "read_write_failure"
	DecodeFailure         Code = "decode_failure"
	QueueFull             Code = "queue_full"
	ChannelSendFailure    Code = "channel_send_failure"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapIOErr maps a low-level serial/transport error to a Code.
// Extend the heuristics as new transports are added.
func MapIOErr(err error) Code {
	if err == nil {
		return OK
	}
	return ReadWriteFailure
}
