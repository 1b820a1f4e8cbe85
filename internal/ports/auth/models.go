package auth

// Staff representa la identidad del personal extraída del token.
type Staff struct {
	ID   string
	Name string
	Role string // vet, reception, admin
}
