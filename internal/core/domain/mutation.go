package domain

import "sort"

// Field names a mutable account field for change tracking.
type Field string

const (
	FieldUsername   Field = "username"
	FieldPassword   Field = "password"
	FieldEmail      Field = "email"
	FieldRoles      Field = "roles"
	FieldVMID       Field = "vm_id"
	FieldVMIP       Field = "vm_ip"
	FieldVMIPID     Field = "vm_ip_id"
	FieldVolumeID   Field = "volume_id"
	FieldDeviceType Field = "device_type"
	FieldApproved   Field = "approved"
)

// FieldSet is the set of fields a mutation explicitly touched.
type FieldSet map[Field]struct{}

// NewFieldSet returns a set holding fields.
func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Add marks f as changed.
func (s FieldSet) Add(f Field) {
	s[f] = struct{}{}
}

// Has reports whether f was changed. A nil set has no fields.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Len returns the number of changed fields.
func (s FieldSet) Len() int {
	return len(s)
}

// Sorted returns the field names in lexical order, for logs.
func (s FieldSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// Mutation is one persistence attempt: the stored state (nil on creation), the
// candidate state, and the fields the caller changed to get there.
type Mutation struct {
	Previous *Account
	Next     Account
	Changed  FieldSet
}

// IsCreate reports whether the mutation creates a new account.
func (m Mutation) IsCreate() bool {
	return m.Previous == nil
}

// AccountPatch is a partial update. Nil fields are left untouched.
type AccountPatch struct {
	Password   *string
	Email      *string
	Roles      []Role // nil = untouched
	VMID       *string
	VMIP       *string
	VMIPID     *string
	VolumeID   *string
	DeviceType *string
	Approved   *bool
}

// Changed returns the fields the patch touches.
func (p AccountPatch) Changed() FieldSet {
	s := NewFieldSet()
	if p.Password != nil {
		s.Add(FieldPassword)
	}
	if p.Email != nil {
		s.Add(FieldEmail)
	}
	if p.Roles != nil {
		s.Add(FieldRoles)
	}
	if p.VMID != nil {
		s.Add(FieldVMID)
	}
	if p.VMIP != nil {
		s.Add(FieldVMIP)
	}
	if p.VMIPID != nil {
		s.Add(FieldVMIPID)
	}
	if p.VolumeID != nil {
		s.Add(FieldVolumeID)
	}
	if p.DeviceType != nil {
		s.Add(FieldDeviceType)
	}
	if p.Approved != nil {
		s.Add(FieldApproved)
	}
	return s
}

// Apply builds the mutation that moves prev to the patched state.
func (p AccountPatch) Apply(prev Account) Mutation {
	next := prev.Clone()
	next.PasswordPlaintext = ""

	if p.Password != nil {
		next.PasswordPlaintext = *p.Password
	}
	if p.Email != nil {
		next.Email = *p.Email
	}
	if p.Roles != nil {
		next.Roles = append([]Role(nil), p.Roles...)
	}
	if p.VMID != nil {
		next.VMID = *p.VMID
	}
	if p.VMIP != nil {
		next.VMIP = *p.VMIP
	}
	if p.VMIPID != nil {
		next.VMIPID = *p.VMIPID
	}
	if p.VolumeID != nil {
		next.VolumeID = *p.VolumeID
	}
	if p.DeviceType != nil {
		next.DeviceType = *p.DeviceType
	}
	if p.Approved != nil {
		next.Approved = *p.Approved
	}

	previous := prev.Clone()
	return Mutation{Previous: &previous, Next: next, Changed: p.Changed()}
}
