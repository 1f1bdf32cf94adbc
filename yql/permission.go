// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package yql

import "strings"

// Fields with protocol meaning across every corpus.
const (
	FieldDocID       = "docId"
	FieldApp         = "app"
	FieldEntity      = "entity"
	FieldOwner       = "owner"
	FieldPermissions = "permissions"
)

// PrincipalRef is the bound query parameter holding the session email.
const PrincipalRef = "@email"

// PermissionType selects which access field(s) a permission clause tests.
type PermissionType int

const (
	// PermOwner tests only the owner field.
	PermOwner PermissionType = iota
	// PermPermissions tests only the permissions field.
	PermPermissions
	// PermBoth tests owner or permissions.
	PermBoth
)

// PermissionPolicy is attached to a conjunction or disjunction and decides
// whether the group's rendered clause is suffixed with a principal filter.
// Bypass always wins over Require: a bypassed group never emits a
// permission clause even when Require is also set, for corpora whose
// access control is enforced by an outer clause.
type PermissionPolicy struct {
	Require   bool
	Bypass    bool
	Principal string // defaults to PrincipalRef when empty
	Type      PermissionType
}

// WithEmailPermissions scopes a group to `permissions contains @email`.
func WithEmailPermissions() PermissionPolicy {
	return PermissionPolicy{Require: true, Type: PermPermissions}
}

// WithOwnerPermissions scopes a group to `owner contains @email`.
func WithOwnerPermissions() PermissionPolicy {
	return PermissionPolicy{Require: true, Type: PermOwner}
}

// WithBothPermissions scopes a group to owner or permissions.
func WithBothPermissions() PermissionPolicy {
	return PermissionPolicy{Require: true, Type: PermBoth}
}

// WithoutPermissions leaves the group unscoped.
func WithoutPermissions() PermissionPolicy {
	return PermissionPolicy{}
}

// BypassPermissions explicitly opts the group out of permission scoping.
func BypassPermissions() PermissionPolicy {
	return PermissionPolicy{Bypass: true}
}

// ForPrincipal returns a copy of the policy bound to a concrete principal
// instead of the @email parameter.
func (p PermissionPolicy) ForPrincipal(principal string) PermissionPolicy {
	p.Principal = principal
	return p
}

// principal renders the principal reference: bound parameters stay bare,
// concrete addresses are escaped and quoted.
func (p PermissionPolicy) principal() string {
	principal := p.Principal
	if principal == "" {
		principal = PrincipalRef
	}
	if strings.HasPrefix(principal, "@") {
		return principal
	}
	return Literal(principal)
}

// Clause renders the permission filter for this policy's type.
func (p PermissionPolicy) Clause() string {
	who := p.principal()
	switch p.Type {
	case PermOwner:
		return FieldOwner + " contains " + who
	case PermBoth:
		return "(" + FieldOwner + " contains " + who + " or " +
			FieldPermissions + " contains " + who + ")"
	default:
		return FieldPermissions + " contains " + who
	}
}

// apply suffixes a rendered group with the permission clause when required.
// Disjunctions arrive already parenthesized, so plain concatenation keeps
// the clause bound to the whole group.
func (p PermissionPolicy) apply(rendered string) string {
	if p.Bypass || !p.Require || rendered == "" {
		return rendered
	}
	return rendered + " and " + p.Clause()
}
