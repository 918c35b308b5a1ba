package domain

// Category is a product category as listed by the catalog endpoint.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Option is one entry of a category selector. The placeholder has an empty Value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryPlaceholder is the first option of every category selector.
var CategoryPlaceholder = Option{Value: "", Label: "Select a category"}

// ProductInput is the admin's add-product form. Numeric fields are kept as
// entered; the server owns their parsing rules.
type ProductInput struct {
	Name        string `json:"name"        validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price"       validate:"required,numeric"`
	Stock       string `json:"stock"       validate:"required,number"`
	CategoryID  string `json:"category_id" validate:"required"`
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Username  string `json:"username"   validate:"required"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required"`
	Password2 string `json:"password2"  validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	IsStaff   bool   `json:"is_staff"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
