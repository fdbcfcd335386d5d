package domain

// ReferenceKind tags which collaborator record a transaction points at.
// The set is closed; collaborators pick their own kind when calling the
// ledger and resolve it themselves on the way back out.
type ReferenceKind string

const (
	ReferenceKindPayment    ReferenceKind = "payment"
	ReferenceKindCustody    ReferenceKind = "custody"
	ReferenceKindPayroll    ReferenceKind = "payroll"
	ReferenceKindExpense    ReferenceKind = "expense"
	ReferenceKindReceivable ReferenceKind = "receivable"
	ReferenceKindAdjustment ReferenceKind = "adjustment"
)

// Valid reports whether k is a known reference kind.
func (k ReferenceKind) Valid() bool {
	switch k {
	case ReferenceKindPayment, ReferenceKindCustody, ReferenceKindPayroll,
		ReferenceKindExpense, ReferenceKindReceivable, ReferenceKindAdjustment:
		return true
	}
	return false
}

// Reference is an opaque (kind, id) pointer to the collaborator record
// that caused a transaction. The ledger stores it and never dereferences it.
type Reference struct {
	Kind ReferenceKind
	ID   string
}

// Validate checks the reference is well formed.
func (r *Reference) Validate() error {
	if !r.Kind.Valid() {
		return ErrUnknownReferenceKind
	}
	if r.ID == "" {
		return ErrInvalidReference
	}
	return nil
}
