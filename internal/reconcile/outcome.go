package reconcile

import "strings"

// Outcome is the classification of one element after comparing its
// property flag with the IDP lists.
type Outcome string

const (
	// OutcomeConsistent: the property agrees with the lists.
	OutcomeConsistent Outcome = "consistent"
	// OutcomeFalselyManaged: the property claims managed, the element is on the unmanaged list.
	OutcomeFalselyManaged Outcome = "falsely-managed"
	// OutcomeFalselyUnmanaged: the property claims unmanaged, the element is not on the unmanaged list.
	OutcomeFalselyUnmanaged Outcome = "falsely-unmanaged"
	// OutcomeAmbiguous: the property claims managed, the element is on neither list.
	OutcomeAmbiguous Outcome = "ambiguous"
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{OutcomeConsistent, OutcomeFalselyManaged, OutcomeFalselyUnmanaged, OutcomeAmbiguous}

// Membership tells on which IDP lists an element was found.
type Membership struct {
	Managed   bool
	Unmanaged bool
}

// PropertyClaimsManaged reports whether a property value means "managed".
// Only a case-insensitive "true" does.
func PropertyClaimsManaged(value string) bool {
	return strings.EqualFold(value, "true")
}

// Classify derives the outcome of an element.
func Classify(claimsManaged bool, m Membership) Outcome {
	switch {
	case claimsManaged && m.Managed:
		return OutcomeConsistent
	case claimsManaged && m.Unmanaged:
		return OutcomeFalselyManaged
	case claimsManaged:
		return OutcomeAmbiguous
	case m.Unmanaged:
		return OutcomeConsistent
	default:
		return OutcomeFalselyUnmanaged
	}
}

// Policy holds the flags that decide what happens to an element.
type Policy struct {
	LogAll                          bool
	IgnorePropertyFalseAndUnmanaged bool
}

// ShouldLog reports whether a record is written for the element. The ignore
// flag only silences the property-false case; its managed counterpart is
// always logged.
func (p Policy) ShouldLog(claimsManaged bool, m Membership) bool {
	if p.LogAll {
		return true
	}
	if claimsManaged && !m.Managed {
		return true
	}
	return !p.IgnorePropertyFalseAndUnmanaged && !claimsManaged && !m.Unmanaged
}

// NeedsRepair reports the repair condition: the property claims managed but
// neither list knows the element.
func NeedsRepair(claimsManaged bool, m Membership) bool {
	return claimsManaged && !m.Managed && !m.Unmanaged
}
