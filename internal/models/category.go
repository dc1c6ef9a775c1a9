package models

// Category groups videos and documents. Categories form a tree through
// ParentID and are listed by (SortOrder, Name).
type Category struct {
	BaseModel
	Name            string      `gorm:"size:255;not null;index" json:"name"`
	Description     string      `gorm:"type:text" json:"description"`
	Slug            string      `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	ParentID        *uint       `gorm:"index" json:"parent_id"`
	Parent          *Category   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Children        []*Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	IsActive        bool        `gorm:"default:true" json:"is_active"`
	IconPath        string      `gorm:"size:512" json:"icon_path"`
	SortOrder       int         `gorm:"default:0" json:"order"`
	MetaTitle       *string     `gorm:"size:255" json:"meta_title"`
	MetaDescription *string     `gorm:"type:text" json:"meta_description"`
	MetaKeywords    *string     `gorm:"size:255" json:"meta_keywords"`
}

// CategoryOrder is the canonical listing order.
const CategoryOrder = "sort_order ASC, name ASC"

func (c *Category) String() string {
	return c.Name
}
