package domain

import "time"

// Role is an authorization tag. The first role of an account is the effective one.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r belongs to the fixed role set.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// DefaultRoles is assigned to accounts created without roles.
func DefaultRoles() []Role {
	return []Role{RoleUser}
}

// Account is a proxy gateway user: identity, credential, role, approval state
// and the VM resources assigned to the user.
type Account struct {
	Username string `json:"username"`

	// PasswordPlaintext only lives between a create/update call and the save
	// hook. It is never serialized.
	PasswordPlaintext string `json:"-"`
	PasswordHash      string `json:"-"`
	Salt              string `json:"-"`

	Email string `json:"email"`
	Roles []Role `json:"roles"`

	VMID       string `json:"vm_id"`
	VMIP       string `json:"vm_ip"`
	VMIPID     string `json:"vm_ip_id"`
	VolumeID   string `json:"volume_id"`
	DeviceType string `json:"device_type"`

	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created"`
}

// EffectiveRole returns the first role. Accounts always carry at least one
// role once they have passed through the save hook.
func (a Account) EffectiveRole() Role {
	return a.Roles[0]
}

// IsAdmin reports whether the effective role is admin.
func (a Account) IsAdmin() bool {
	return a.EffectiveRole() == RoleAdmin
}

// HasCredential reports whether a salted hash has been stored.
func (a Account) HasCredential() bool {
	return a.Salt != "" && a.PasswordHash != ""
}

// Clone returns a copy that shares no slices with a.
func (a Account) Clone() Account {
	c := a
	if a.Roles != nil {
		c.Roles = append([]Role(nil), a.Roles...)
	}
	return c
}

// NewAccountInput carries the fields a caller may supply at creation.
type NewAccountInput struct {
	Username   string
	Password   string
	Email      string
	Roles      []Role
	VMID       string
	VMIP       string
	VMIPID     string
	VolumeID   string
	DeviceType string
	Approved   bool
}

// NewAccount builds the creation mutation for in. Defaults are applied and the
// password field is marked changed whenever a password was supplied.
func NewAccount(in NewAccountInput) Mutation {
	next := Account{
		Username:          in.Username,
		PasswordPlaintext: in.Password,
		Email:             in.Email,
		Roles:             append([]Role(nil), in.Roles...),
		VMID:              in.VMID,
		VMIP:              in.VMIP,
		VMIPID:            in.VMIPID,
		VolumeID:          in.VolumeID,
		DeviceType:        in.DeviceType,
		Approved:          in.Approved,
	}
	if len(next.Roles) == 0 {
		next.Roles = DefaultRoles()
	}

	changed := NewFieldSet(FieldUsername, FieldEmail, FieldRoles, FieldApproved)
	if in.Password != "" {
		changed.Add(FieldPassword)
	}
	for f, v := range map[Field]string{
		FieldVMID:       in.VMID,
		FieldVMIP:       in.VMIP,
		FieldVMIPID:     in.VMIPID,
		FieldVolumeID:   in.VolumeID,
		FieldDeviceType: in.DeviceType,
	} {
		if v != "" {
			changed.Add(f)
		}
	}

	return Mutation{Next: next, Changed: changed}
}

// ListFilter selects accounts by approval state.
type ListFilter struct {
	Approved *bool // nil = all accounts
}

// ApprovalState is the user-facing name of a ListFilter.
type ApprovalState string

const (
	ApprovalAll      ApprovalState = "all"
	ApprovalApproved ApprovalState = "approved"
	ApprovalPending  ApprovalState = "pending"
)

// Filter converts the state to a ListFilter. Unknown values select all accounts.
func (s ApprovalState) Filter() ListFilter {
	switch s {
	case ApprovalApproved:
		v := true
		return ListFilter{Approved: &v}
	case ApprovalPending:
		v := false
		return ListFilter{Approved: &v}
	default:
		return ListFilter{}
	}
}
