package proto

// Kind identifies the message type carried in msg.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgWake
	MsgError
	MsgTermWrite
	MsgTermClear
	MsgMonitorDump
	MsgTimerTick
)

// ErrCode is a generic error category for MsgError responses.
type ErrCode uint16

const (
	ErrUnknown ErrCode = iota
	ErrBadMessage
	ErrNotFound
	ErrBusy
	ErrTooLarge
	ErrInternal
)

func (c ErrCode) String() string {
	switch c {
	case ErrUnknown:
		return "unknown"
	case ErrBadMessage:
		return "bad_message"
	case ErrNotFound:
		return "not_found"
	case ErrBusy:
		return "busy"
	case ErrTooLarge:
		return "too_large"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgWake:
		return "wake"
	case MsgError:
		return "error"
	case MsgTermWrite:
		return "term_write"
	case MsgTermClear:
		return "term_clear"
	case MsgMonitorDump:
		return "monitor_dump"
	case MsgTimerTick:
		return "timer_tick"
	default:
		return "unknown"
	}
}
