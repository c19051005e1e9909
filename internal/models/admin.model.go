package models

type Admin struct {
	BaseUUIDModel
	Username     string `gorm:"type:text;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:text;not null"             json:"-"`
	Name         string `gorm:"type:text"                      json:"name"`
	Email        string `gorm:"type:text"                      json:"email"`
}

func (a *Admin) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return "Admin"
}

func (a *Admin) Principal() Principal {
	return NewPrincipal(PrincipalAdmin, a.ID)
}
