package offers

// One error type per failure kind so the user-facing messages stay distinct
// and stable. Every operation converts these into Result at its boundary.

type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string { return e.Reason }

type AuthorizationError struct{ Reason string }

func (e *AuthorizationError) Error() string { return e.Reason }

type NotFoundError struct{ Reason string }

func (e *NotFoundError) Error() string { return e.Reason }

type StateError struct{ Reason string }

func (e *StateError) Error() string { return e.Reason }

type ConflictError struct{ Reason string }

func (e *ConflictError) Error() string { return e.Reason }

type PersistenceError struct{ Reason string }

func (e *PersistenceError) Error() string { return e.Reason }
