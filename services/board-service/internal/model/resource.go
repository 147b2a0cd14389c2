package model

// ResourceKind tags which axis a resource lives on.
type ResourceKind string

const (
	KindStaff ResourceKind = "staff"
	KindBed   ResourceKind = "bed"
)

type Role string

const (
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Resource is a staff member or a bed/station. Only staff resources carry a Role.
type Resource struct {
	Kind ResourceKind
	ID   string
	Role Role
}

func Staff(id string, role Role) Resource {
	return Resource{Kind: KindStaff, ID: id, Role: role}
}

func Bed(id string) Resource {
	return Resource{Kind: KindBed, ID: id}
}

func (r Resource) IsStaff() bool {
	return r.Kind == KindStaff
}

// IsManager reports the universal-availability exception.
func (r Resource) IsManager() bool {
	return r.Kind == KindStaff && r.Role == RoleManager
}

// References reports whether b occupies r: staff resources match on StaffID, beds on BedID.
func (r Resource) References(b Booking) bool {
	if r.ID == "" {
		return false
	}
	switch r.Kind {
	case KindStaff:
		return b.StaffID == r.ID
	case KindBed:
		return b.BedID == r.ID
	default:
		return false
	}
}

// StaffMember is one row of the staff registry.
type StaffMember struct {
	ID       string
	Name     string
	Role     Role
	Color    string
	IsActive bool
}

func (s StaffMember) Resource() Resource {
	return Staff(s.ID, s.Role)
}

// BedInfo is one entry of the fixed bed list.
type BedInfo struct {
	ID   string
	Name string
}

func (b BedInfo) Resource() Resource {
	return Bed(b.ID)
}
