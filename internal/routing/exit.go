// Package routing models call-routing exits: the terminus a call is sent to
// when a time range is active. An exit references a destination, a label
// (another routable number), or a media prompt, always scoped to a tenant.
package routing

// ExitKind identifies the referenced entity class of an exit.
type ExitKind string

const (
	// KindDestination references an agent, queue or other terminating endpoint.
	KindDestination ExitKind = "destination"
	// KindLabel references another routable label (one level of indirection).
	KindLabel ExitKind = "label"
	// KindPrompt references a media prompt played to the caller.
	KindPrompt ExitKind = "prompt"
)

// Valid reports whether the kind is one of the closed set of exit kinds.
func (k ExitKind) Valid() bool {
	switch k {
	case KindDestination, KindLabel, KindPrompt:
		return true
	}
	return false
}

// TypeCode is the display/route-generation classification derived during
// resolution.
type TypeCode string

const (
	// TypeMapped marks a destination that participates in number mapping.
	TypeMapped TypeCode = "mapped"
	// TypeDestination marks a plain, unmapped destination.
	TypeDestination TypeCode = "destination"
	// TypeLabel marks a label exit.
	TypeLabel TypeCode = "label"
	// TypePromptStop marks a prompt after which routing stops.
	TypePromptStop TypeCode = "prompt_stop"
	// TypePromptContinue marks a prompt after which routing continues.
	TypePromptContinue TypeCode = "prompt_continue"
)

// AfterPromptBehavior describes what happens once a prompt finishes playing.
type AfterPromptBehavior string

const (
	// AfterPromptContinue resumes routing after the prompt.
	AfterPromptContinue AfterPromptBehavior = "continue"
	// AfterPromptStop terminates the call after the prompt.
	AfterPromptStop AfterPromptBehavior = "stop"
)

// Exit is a resolved, immutable routing terminus. Identity is defined by
// (Kind, Value, DequeueValue, TenantID); the remaining fields are derived
// metadata computed at resolution time.
type Exit struct {
	Kind         ExitKind
	Value        string
	DequeueValue string
	TenantID     string

	EntityID        string
	Code            TypeCode
	RequiresDequeue bool
}

// Equal reports identity equality between two exits. Derived metadata does
// not participate: two references to the same entity are the same exit.
func (e Exit) Equal(other Exit) bool {
	return e.Kind == other.Kind &&
		e.Value == other.Value &&
		e.DequeueValue == other.DequeueValue &&
		e.TenantID == other.TenantID
}

// TransferLookupCode returns the legacy route-table transfer code: "O" for
// exits that require a dequeue step, empty otherwise.
func (e Exit) TransferLookupCode() string {
	if e.RequiresDequeue {
		return "O"
	}
	return ""
}

// Ref is an unresolved exit reference as stored on a routing choice.
type Ref struct {
	Kind         ExitKind
	Value        string
	DequeueValue string
}
