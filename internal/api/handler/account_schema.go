package handler

import (
	"time"

	"github.com/proxygate/accounts/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Request / Response types ---

// createAccountRequest is the public registration payload. It carries no role
// or approval: self-registered accounts are pending users until an admin
// approves or promotes them. Field rules live in the account validator.
type createAccountRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	VMID       string `json:"vm_id,omitempty"`
	VMIP       string `json:"vm_ip,omitempty"`
	VMIPID     string `json:"vm_ip_id,omitempty"`
	VolumeID   string `json:"volume_id,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
}

// updateAccountRequest is a partial update: absent fields are left untouched.
type updateAccountRequest struct {
	Password   *string  `json:"password,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	VMID       *string  `json:"vm_id,omitempty"`
	VMIP       *string  `json:"vm_ip,omitempty"`
	VMIPID     *string  `json:"vm_ip_id,omitempty"`
	VolumeID   *string  `json:"volume_id,omitempty"`
	DeviceType *string  `json:"device_type,omitempty"`
	Approved   *bool    `json:"approved,omitempty"`
}

type verifyRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type listAccountsQuery struct {
	Status string `query:"status" json:"status" validate:"omitempty,oneof=all approved pending"`
}

type accountResponse struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Roles      []string  `json:"roles"`
	Role       string    `json:"role"`
	IsAdmin    bool      `json:"is_admin"`
	VMID       string    `json:"vm_id"`
	VMIP       string    `json:"vm_ip"`
	VMIPID     string    `json:"vm_ip_id"`
	VolumeID   string    `json:"volume_id"`
	DeviceType string    `json:"device_type"`
	Approved   bool      `json:"approved"`
	Created    time.Time `json:"created"`
}

type listAccountsResponse struct {
	Items []accountResponse `json:"items"`
	Total int               `json:"total"`
}

// --- Request → domain input ---

func toRoles(in []string) []domain.Role {
	if in == nil {
		return nil
	}
	out := make([]domain.Role, len(in))
	for i, r := range in {
		out[i] = domain.Role(r)
	}
	return out
}

func toNewAccountInput(req createAccountRequest) domain.NewAccountInput {
	return domain.NewAccountInput{
		Username:   req.Username,
		Password:   req.Password,
		Email:      req.Email,
		Roles:      domain.DefaultRoles(),
		VMID:       req.VMID,
		VMIP:       req.VMIP,
		VMIPID:     req.VMIPID,
		VolumeID:   req.VolumeID,
		DeviceType: req.DeviceType,
	}
}

func toPatch(req updateAccountRequest) domain.AccountPatch {
	return domain.AccountPatch{
		Password:   req.Password,
		Email:      req.Email,
		Roles:      toRoles(req.Roles),
		VMID:       req.VMID,
		VMIP:       req.VMIP,
		VMIPID:     req.VMIPID,
		VolumeID:   req.VolumeID,
		DeviceType: req.DeviceType,
		Approved:   req.Approved,
	}
}

// --- domain → Response ---

func toAccountResponse(a *domain.Account) accountResponse {
	roles := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		roles[i] = string(r)
	}
	return accountResponse{
		Username:   a.Username,
		Email:      a.Email,
		Roles:      roles,
		Role:       string(a.EffectiveRole()),
		IsAdmin:    a.IsAdmin(),
		VMID:       a.VMID,
		VMIP:       a.VMIP,
		VMIPID:     a.VMIPID,
		VolumeID:   a.VolumeID,
		DeviceType: a.DeviceType,
		Approved:   a.Approved,
		Created:    a.CreatedAt,
	}
}

func toListResponse(accounts []*domain.Account) listAccountsResponse {
	items := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toAccountResponse(a))
	}
	return listAccountsResponse{Items: items, Total: len(items)}
}
