package gateway

// OutcomeKind tags the result of a single exchange with the grading service.
type OutcomeKind int

const (
	// OutcomeOK is a 2xx response.
	OutcomeOK OutcomeKind = iota
	// OutcomeTransportError means the request could not be built or sent.
	OutcomeTransportError
	// OutcomeNetworkError means no response was received.
	OutcomeNetworkError
	// OutcomeHTTPError is a non-2xx response.
	OutcomeHTTPError
	// OutcomeCancelled means the caller's context ended before a response arrived.
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeHTTPError:
		return "http_error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// BodyKind describes how a response body was retained.
type BodyKind int

const (
	BodyEmpty BodyKind = iota
	// BodyJSON is a body that parsed as JSON on a structured call.
	BodyJSON
	// BodyText is a non-JSON body on a structured call.
	BodyText
	// BodyBinary is a body requested as uninterpreted bytes.
	BodyBinary
)

// Outcome is the closed set of results a transport call can produce.
type Outcome struct {
	Kind        OutcomeKind
	Status      int
	StatusText  string
	ContentType string
	Body        []byte
	BodyKind    BodyKind
	Err         error
}

// OK reports whether the exchange succeeded.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeOK
}
