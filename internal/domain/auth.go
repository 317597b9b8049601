package domain

// SubjectType distinguishes end-user sessions from the fixed admin session.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// AdminRole enumerates administrative roles carried in admin tokens.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "ADMIN"
	AdminRoleSuperAdmin AdminRole = "SUPER_ADMIN"
)

// AdminSubjectID is the fixed identity asserted by admin tokens. The admin
// is not stored in the users table; its credentials come from configuration.
const AdminSubjectID = "admin"
