package structs

// Role of an authenticated caller.
type Role string

const (
	RoleWorker   Role = "worker"
	RoleEmployer Role = "employer"
)

// Caller is the identity attached to a request. The zero value is anonymous.
type Caller struct {
	ID   string
	Role Role
}

// Anonymous reports whether no identity is attached.
func (c Caller) Anonymous() bool { return c.ID == "" }
