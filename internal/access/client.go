package access

// Client sees the project trees it owns. The only thing it may change is the
// title and description of its own features while they are still being
// specified, plus its own profile.
type Client struct{}

func (Client) String() string { return roleClient }

func (Client) authorize(a Actor, action Action, t Target) Decision {
	switch t.Resource {
	case ResourceProject, ResourceFunction, ResourceWorkLog:
		if isRead(action) && t.ownedByClient(a.ID) {
			return Allow()
		}
	case ResourceFeature:
		if !t.ownedByClient(a.ID) {
			return Deny()
		}
		if isRead(action) {
			return Allow()
		}
		if action == ActionUpdate && (t.Status == "backlog" || t.Status == "specs") {
			return Allow(FieldStatus, FieldProject, FieldEstimatedTime, FieldCost)
		}
	case ResourceInvoice:
		if isRead(action) && t.ownedByClient(a.ID) {
			return Allow()
		}
	case ResourceProjectRate:
		if isRead(action) {
			return Allow()
		}
	case ResourceUser:
		return self(a, action, t)
	}
	return Deny()
}

func (Client) scope(a Actor, r Resource) Scope {
	switch r {
	case ResourceProject, ResourceFeature, ResourceFunction, ResourceWorkLog:
		return where(clientOwnsProject, a.ID)
	case ResourceInvoice:
		return where(clientOwnsInvoice, a.ID)
	case ResourceProjectRate:
		return All()
	case ResourceUser:
		return where(selfUser, a.ID)
	}
	return None()
}

func isRead(action Action) bool {
	return action == ActionList || action == ActionRead
}

// self grants a user read and update on its own profile, never its role or
// login email.
func self(a Actor, action Action, t Target) Decision {
	if t.OwnerID != a.ID {
		return Deny()
	}
	switch action {
	case ActionRead, ActionList:
		return Allow()
	case ActionUpdate:
		return Allow(FieldRole, FieldEmail)
	}
	return Deny()
}
