package models

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RoleCollections maps a login role to the collection carrying that role's
// profile documents.
var RoleCollections = map[string]string{
	"designer": "designers",
	"client":   "clients",
	"admin":    "admins",
	"vendor":   "vendors",
}

// CredentialModel reads the credentials collection. A credential is unique
// per email+role pair by convention; the same email may hold several roles.
type CredentialModel struct {
	*BaseModel
	open Opener
}

func NewCredentialModel(open Opener) *CredentialModel {
	return &CredentialModel{BaseModel: NewBaseModel("credentials", open), open: open}
}

func (m *CredentialModel) FindByEmailAndRole(ctx context.Context, email, role string) (bson.M, error) {
	return m.FindOne(ctx, bson.M{"email": email, "role": role})
}

func (m *CredentialModel) FindByEmail(ctx context.Context, email string) (bson.M, error) {
	return m.FindOne(ctx, bson.M{"email": email})
}

// RoleDetails fetches the profile document behind a credential from the
// role-specific collection. Returns (nil, nil) for an unknown role or a
// missing profile.
func (m *CredentialModel) RoleDetails(ctx context.Context, role, userID string) (bson.M, error) {
	name, ok := RoleCollections[role]
	if !ok {
		return nil, nil
	}
	return NewBaseModel(name, m.open).FindOne(ctx, bson.M{"id": userID})
}
