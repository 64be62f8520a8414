package domain

// Identity is the result of authenticating a caller: who they are and
// what they may do. Set on the request context by the auth middleware
// and passed into services that record the acting user.
type Identity struct {
	MemberID uint
	Name     string
	Role     string
}

// Approver roles may review payments and pending registrations.
func (i Identity) IsApprover() bool {
	return i.Role == "admin" || i.Role == "treasurer"
}

// LoanReviewer roles see every loan; everyone else sees only their own.
func (i Identity) IsLoanReviewer() bool {
	return i.Role == "admin" || i.Role == "loan-officer"
}
