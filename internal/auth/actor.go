package auth

import "github.com/miftajuneidi2008/ansar-dfp/internal/model"

// Actor is the authenticated principal behind a request. It is threaded
// explicitly into every service call; nothing in the core reads session state
// from ambient context.
type Actor struct {
	ID       string
	Role     string
	BranchID *string
}

// IsBranchUser reports whether the actor submits applications for a branch.
func (a Actor) IsBranchUser() bool {
	return a.Role == model.RoleBranchUser
}

// IsApprover reports whether the actor is a head office approver.
func (a Actor) IsApprover() bool {
	return a.Role == model.RoleHeadOfficeApprover
}

// IsAdmin reports whether the actor is a system administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleSystemAdmin
}

// ActorFromUser builds an actor from a stored user.
func ActorFromUser(u *model.UserModel) Actor {
	return Actor{ID: u.ID, Role: u.Role, BranchID: u.BranchID}
}
