package notes

import "time"

// Note is a persisted note owned by exactly one user.
type Note struct {
	ID        uint       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint       `gorm:"column:user_id;not null;index:idx_notes_user"`
	Title     string     `gorm:"column:title;size:255;not null"`
	Content   string     `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime:false;not null"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return "notes"
}

// Patch carries a partial update; nil fields are left unchanged.
type Patch struct {
	Title   *string
	Content *string
}

