package directory

import id "gatepass/pkg/domain"

// Directory entities are lookup records with plain foreign-key fields.
// Relationships are queries, not owned object graphs.

type Residence struct {
	ID      id.ResidenceID
	Name    string
	Address string
}

type Resident struct {
	ID           id.ResidentID
	Name         string
	PhoneNumber  string
	Apartment    string
	PasswordHash string
	ResidenceID  id.ResidenceID
}

type Guard struct {
	ID           id.GuardID
	Name         string
	PhoneNumber  string
	PasswordHash string
	ResidenceID  id.ResidenceID
}
