package model

import "time"

// Store represents a row in the `stores` table. Stores are created by
// administrators and may be assigned to an OWNER user via OwnerID.
//
// Fields:
//  ID        – primary key identifier of the store.
//  Name      – store name.
//  Email     – contact email of the store.
//  Address   – postal address of the store.
//  OwnerID   – users.id of the owning account (nullable).
//  CreatedAt – timestamp of creation.
type Store struct {
	ID        uint64    // stores.id
	Name      string    // stores.name
	Email     string    // stores.email
	Address   string    // stores.address
	OwnerID   *uint64   // stores.owner_id (nullable)
	CreatedAt time.Time // stores.created_at
}
