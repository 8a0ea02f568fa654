package models

// MaxUserNameLength mirrors the VARCHAR(250) bound of the users.name column.
const MaxUserNameLength = 250

// User is the single entity served by the lazy loader. The durable row is authoritative;
// cached copies are derived from it.
type User struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string `gorm:"size:250;not null" json:"name"`
}

// TableName pins the table name used by setup and the read path.
func (User) TableName() string {
	return "users"
}
