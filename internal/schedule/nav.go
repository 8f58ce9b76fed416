package schedule

// Role is a user role as reported by the profile endpoint.
type Role string

const (
	RoleTeacher       Role = "Teacher"
	RoleManager       Role = "Manager"
	RoleAdministrator Role = "Administrator"
)

// NavItem is one entry of the role-dependent navigation.
type NavItem struct {
	Command string // CLI command that serves the entry
	Label   string
}

var guestItems = []NavItem{
	{Command: "login", Label: "Log in"},
	{Command: "register", Label: "Register"},
}

var itemsByRole = map[Role][]NavItem{
	RoleTeacher: {
		{Command: "schedule", Label: "My schedule"},
		{Command: "whoami", Label: "Profile"},
		{Command: "subjects mine", Label: "My subjects"},
		{Command: "slots list", Label: "Working hours"},
	},
	RoleManager: {
		{Command: "match", Label: "Build a schedule"},
		{Command: "whoami", Label: "Profile"},
		{Command: "clients", Label: "Clients"},
		{Command: "subjects list", Label: "Subjects"},
	},
	RoleAdministrator: {
		{Command: "users", Label: "Users"},
		{Command: "config show", Label: "Settings"},
		{Command: "whoami", Label: "Profile"},
	},
}

// ItemsForRole returns the navigation for role. Unknown or empty roles get
// the guest entries.
func ItemsForRole(role Role) []NavItem {
	items, ok := itemsByRole[role]
	if !ok {
		items = guestItems
	}
	return append([]NavItem(nil), items...)
}
