package entities

// Role is the marketplace role of a user.
type Role string

const (
	RoleClient  Role = "client"
	RoleWriter  Role = "writer"
	RoleStudent Role = "student"
)

// Roles lists every assignable role.
var Roles = []Role{RoleClient, RoleWriter, RoleStudent}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleWriter, RoleStudent:
		return true
	}
	return false
}

// ActsAsClient reports whether the role posts requests.
// A student is treated as a client everywhere a client is expected.
func (r Role) ActsAsClient() bool {
	return r == RoleClient || r == RoleStudent
}

// WriterStatus is the availability of a writer.
type WriterStatus string

const (
	WriterActive   WriterStatus = "active"
	WriterBusy     WriterStatus = "busy"
	WriterInactive WriterStatus = "inactive"
)

// IsValid reports whether s is a known writer status.
func (s WriterStatus) IsValid() bool {
	switch s {
	case WriterActive, WriterBusy, WriterInactive:
		return true
	}
	return false
}
