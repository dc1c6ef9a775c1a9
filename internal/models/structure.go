package models

// Structure is an organisational unit that owns media.
type Structure struct {
	BaseModel
	Name          string     `gorm:"size:255;not null" json:"name"`
	StructureType string     `gorm:"size:100" json:"structure_type"`
	ParentID      *uint      `gorm:"index" json:"parent_id"`
	Parent        *Structure `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ReferenteID   *uint      `json:"referente_id"`
	Referente     *Person    `gorm:"constraint:OnDelete:SET NULL" json:"referente,omitempty"`
	Description   string     `gorm:"type:text" json:"description"`
}

func (s *Structure) String() string {
	return s.Name
}

type Person struct {
	BaseModel
	Name    string `gorm:"size:255" json:"name"`
	Surname string `gorm:"size:255" json:"surname"`
	Email   string `gorm:"size:255;index" json:"email"`
}

func (p *Person) String() string {
	return p.Name + " " + p.Surname
}
