package models

import "time"

// Player — запись регистрации игрока лиги. Фото и документ загружаются
// в объектное хранилище, в БД хранятся только ключи.
type Player struct {
	ID          int       `json:"id" db:"id"`
	FullName    string    `json:"full_name" db:"full_name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	SkillLevel  *string   `json:"skill_level,omitempty" db:"skill_level"`
	Division    *string   `json:"division,omitempty" db:"division"`
	PhotoKey    *string   `json:"-" db:"photo_key"`
	PhotoURL    *string   `json:"photo_url,omitempty" db:"-"`
	DocumentKey *string   `json:"-" db:"document_key"`
	DocumentURL *string   `json:"document_url,omitempty" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
