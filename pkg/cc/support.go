package cc

// Support is the answer to "does the node support this command".
type Support uint8

const (
	// SupportUnknown means the answer depends on state not yet learned.
	SupportUnknown Support = iota

	// SupportYes means the command is supported.
	SupportYes

	// SupportNo means the command is known to be unsupported.
	SupportNo
)

// SupportOf converts a known boolean answer.
func SupportOf(ok bool) Support {
	if ok {
		return SupportYes
	}
	return SupportNo
}

// Known reports whether the answer is definite.
func (s Support) Known() bool {
	return s != SupportUnknown
}

// String returns the support state name.
func (s Support) String() string {
	switch s {
	case SupportYes:
		return "YES"
	case SupportNo:
		return "NO"
	default:
		return "UNKNOWN"
	}
}

// And combines two answers: No wins over Unknown, Unknown wins over Yes.
func (s Support) And(o Support) Support {
	switch {
	case s == SupportNo || o == SupportNo:
		return SupportNo
	case s == SupportUnknown || o == SupportUnknown:
		return SupportUnknown
	default:
		return SupportYes
	}
}
