package usecases

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	Active        bool       `bun:"active,notnull,default:false" json:"active"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// GetID returns the user id as string
func (u *User) GetID() string {
	return u.ID.String()
}

// UserProfile is the minimal projection joined into listings.
type UserProfile struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Profile returns the minimal projection of the account
func (u *User) Profile() *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// UserActivation holds a pending activation code. One row per inactive
// account; the row is destroyed when the code is redeemed.
type UserActivation struct {
	bun.BaseModel  `bun:"table:user_activations,alias:act"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	ActivationCode string     `bun:"activation_code,notnull" json:"activation_code,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// UseCase is the use-case model. CreatedBy is a weak reference: the
// creator account can be deleted while the use case stays.
type UseCase struct {
	bun.BaseModel    `bun:"table:use_cases,alias:uc"`
	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title            string     `bun:"title,notnull" json:"title"`
	Description      string     `bun:"description,notnull" json:"description"`
	Actor            string     `bun:"actor" json:"actor"`
	Preconditions    string     `bun:"preconditions" json:"preconditions"`
	Postconditions   string     `bun:"postconditions" json:"postconditions"`
	MainFlow         string     `bun:"main_flow" json:"main_flow"`
	AlternativeFlows string     `bun:"alternative_flows" json:"alternative_flows"`
	Exceptions       *string    `bun:"exceptions" json:"exceptions"`
	CreatedBy        *uuid.UUID `bun:"created_by,nullzero,type:uuid" json:"created_by,omitempty"`
	Creator          *User      `bun:"rel:belongs-to,join:created_by=id" json:"creator,omitempty"`
	CreatedAt        *time.Time `bun:"created_at,nullzero" json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// UseCaseFields are the mutable attributes of a use case. They travel
// together: create and update both take the full set, and the history
// snapshot copies all of them.
type UseCaseFields struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Actor            string  `json:"actor"`
	Preconditions    string  `json:"preconditions"`
	Postconditions   string  `json:"postconditions"`
	MainFlow         string  `json:"main_flow"`
	AlternativeFlows string  `json:"alternative_flows"`
	Exceptions       *string `json:"exceptions"`
}

// Fields returns the current mutable attributes
func (u *UseCase) Fields() UseCaseFields {
	return UseCaseFields{
		Title:            u.Title,
		Description:      u.Description,
		Actor:            u.Actor,
		Preconditions:    u.Preconditions,
		Postconditions:   u.Postconditions,
		MainFlow:         u.MainFlow,
		AlternativeFlows: u.AlternativeFlows,
		Exceptions:       u.Exceptions,
	}
}

// ApplyFields overwrites the mutable attributes
func (u *UseCase) ApplyFields(f UseCaseFields) {
	u.Title = f.Title
	u.Description = f.Description
	u.Actor = f.Actor
	u.Preconditions = f.Preconditions
	u.Postconditions = f.Postconditions
	u.MainFlow = f.MainFlow
	u.AlternativeFlows = f.AlternativeFlows
	u.Exceptions = f.Exceptions
}

// UseCaseHistory is an immutable snapshot of a use case as it existed
// immediately before an update. Rows are only ever inserted.
type UseCaseHistory struct {
	bun.BaseModel    `bun:"table:use_case_history,alias:uch"`
	ID               uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UseCaseID        uuid.UUID  `bun:"use_case_id,notnull,type:uuid" json:"use_case_id"`
	Title            string     `bun:"title" json:"title"`
	Description      string     `bun:"description" json:"description"`
	Actor            string     `bun:"actor" json:"actor"`
	Preconditions    string     `bun:"preconditions" json:"preconditions"`
	Postconditions   string     `bun:"postconditions" json:"postconditions"`
	MainFlow         string     `bun:"main_flow" json:"main_flow"`
	AlternativeFlows string     `bun:"alternative_flows" json:"alternative_flows"`
	Exceptions       *string    `bun:"exceptions" json:"exceptions"`
	EditedBy         uuid.UUID  `bun:"edited_by,notnull,type:uuid" json:"edited_by"`
	Editor           *User      `bun:"rel:belongs-to,join:edited_by=id" json:"editor,omitempty"`
	EditedAt         *time.Time `bun:"edited_at,nullzero" json:"edited_at,omitempty"`
}

// SnapshotOf builds the history row for a use case before an edit is
// applied. The caller persists it in the same transaction as the edit.
func SnapshotOf(uc *UseCase, editedBy uuid.UUID) *UseCaseHistory {
	now := time.Now()
	return &UseCaseHistory{
		ID:               uuid.New(),
		UseCaseID:        uc.ID,
		Title:            uc.Title,
		Description:      uc.Description,
		Actor:            uc.Actor,
		Preconditions:    uc.Preconditions,
		Postconditions:   uc.Postconditions,
		MainFlow:         uc.MainFlow,
		AlternativeFlows: uc.AlternativeFlows,
		Exceptions:       uc.Exceptions,
		EditedBy:         editedBy,
		EditedAt:         &now,
	}
}
