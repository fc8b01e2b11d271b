package model

import (
	"time"
)

// DemoUsername identifies the single-tenant placeholder identity. The core
// only ever sees the resolved user ID, never the lookup.
const DemoUsername = "demo"

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
