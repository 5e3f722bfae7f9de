package user

// Role values assigned at registration. Admin accounts are seeded at startup.
const (
	RoleBuyer  = "Buyer"
	RoleSeller = "Seller"
	RoleAdmin  = "Admin"
)

type User struct {
	ID        int    `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// ValidRole reports whether the given role is one the API accepts from clients.
// Admin is excluded on purpose: admins are seeded, never self-registered.
func ValidRole(role string) bool {
	return role == RoleBuyer || role == RoleSeller
}
