package auth

import "github.com/google/uuid"

// TenantScoped is implemented by every record owned by a company.
type TenantScoped interface {
	OwningCompany() uuid.UUID
}

// CanAccess reports whether the identity may see obj. Superusers see all tenants.
func (i Identity) CanAccess(obj TenantScoped) bool {
	return i.Superuser || obj.OwningCompany() == i.CompanyID
}

// Scope is the row filter repositories apply to list queries.
// Zero-valued NullUUIDs mean "no filter".
type Scope struct {
	CompanyID uuid.NullUUID
	CreatedBy uuid.NullUUID
}

// Scope limits queries to the identity's company, or nothing for superusers.
func (i Identity) Scope() Scope {
	if i.Superuser {
		return Scope{}
	}
	return Scope{CompanyID: uuid.NullUUID{UUID: i.CompanyID, Valid: true}}
}

// OwnScope is Scope narrowed to records the caller created when the caller is
// an operator. Admins and viewers see the whole company.
func (i Identity) OwnScope() Scope {
	s := i.Scope()
	if !i.Superuser && i.Role == RoleOperator {
		s.CreatedBy = uuid.NullUUID{UUID: i.AccountID, Valid: true}
	}
	return s
}

// Allows reports whether a record with the given owner and creator falls inside s.
func (s Scope) Allows(companyID, createdBy uuid.UUID) bool {
	if s.CompanyID.Valid && s.CompanyID.UUID != companyID {
		return false
	}
	if s.CreatedBy.Valid && s.CreatedBy.UUID != createdBy {
		return false
	}
	return true
}
