package engine

// ValidationError indicates malformed input: an empty or oversized name,
// rejected markup, or an unparseable URL. The caller can recover by
// resubmitting corrected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NotFoundError indicates the referenced entity does not exist, or the
// actor is not entitled to learn that it exists.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// AuthorizationError indicates the target exists but the actor's role does
// not permit the operation. Reason carries a stable policy reason code.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "forbidden: " + e.Reason
}

// ConflictError indicates the operation would violate a uniqueness or
// cardinality invariant: duplicate membership, duplicate URL in a UTub,
// duplicate tag on a URL, or the per-URL tag ceiling.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// Outcome distinguishes an applied modification from one whose new value
// equalled the old value. NoChange is a success variant, not an error.
type Outcome int

const (
	OutcomeUpdated Outcome = iota
	OutcomeNoChange
)
