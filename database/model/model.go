package model

type User struct {
	Id           int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    int64  `json:"createdAt" gorm:"autoCreateTime"`
}

// TwoFactor holds an optional TOTP secret for a user. Secrets live in their
// own table so enabling or disabling 2FA never touches the users row.
type TwoFactor struct {
	Id        int    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int    `json:"userId" gorm:"uniqueIndex;not null"`
	Secret    string `json:"-" gorm:"not null"`
	CreatedAt int64  `json:"createdAt" gorm:"autoCreateTime"`
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key"`
	Value string `json:"value" form:"value"`
}

// SearchRecord remembers a user's recent recipe searches for the home page.
type SearchRecord struct {
	Id        int    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int    `json:"userId" gorm:"index;not null"`
	Query     string `json:"query" gorm:"not null"`
	CreatedAt int64  `json:"createdAt" gorm:"autoCreateTime"`
}
