package admin

import (
	"context"
	"errors"
	"time"
)

// Role is the application-level role stored on a user document.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AccountRecord is a read-only snapshot of an account held by the identity directory.
type AccountRecord struct {
	UID          string     `json:"uid"`
	Email        string     `json:"email"`
	Disabled     bool       `json:"disabled"`
	CreatedAt    *time.Time `json:"createdTime"`
	LastSignInAt *time.Time `json:"lastSignInTime"`
}

// UserDocument is the per-user profile document stored in Firestore under the
// users collection, keyed by the account UID.
type UserDocument struct {
	UID               string    `json:"uid" firestore:"uid"`
	Email             string    `json:"email" firestore:"email"`
	Role              Role      `json:"role" firestore:"role"`
	CanMoveTools      bool      `json:"canMoveTools" firestore:"canMoveTools"`
	CanControlObjects bool      `json:"canControlObjects" firestore:"canControlObjects"`
	CreatedAt         time.Time `json:"createdAt" firestore:"createdAt"`
}

// SyncStats aggregates the outcome of one reconciliation run. Never persisted.
type SyncStats struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// DeletionResult tracks the independent outcomes of a combined account deletion.
type DeletionResult struct {
	AuthDeleted      bool     `json:"authDeleted"`
	FirestoreDeleted bool     `json:"firestoreDeleted"`
	Errors           []string `json:"errors"`
}

// ListUsersResult is the fully aggregated directory listing.
type ListUsersResult struct {
	UserCount int             `json:"userCount"`
	Users     []AccountRecord `json:"users"`
}

// AccountPage is one page of a directory enumeration. NextPageToken is empty on
// the final page.
type AccountPage struct {
	Accounts      []AccountRecord
	NextPageToken string
}

// ErrAccountNotFound reports that the directory has no account for the given key.
var ErrAccountNotFound = errors.New("account not found")

// ErrDocumentNotFound reports that the store has no document for the given UID.
var ErrDocumentNotFound = errors.New("user document not found")

// Directory enumerates and mutates accounts in the identity directory.
type Directory interface {
	// ListAccounts returns one page of at most pageSize accounts starting at the
	// opaque continuation token. An empty token starts from the beginning.
	ListAccounts(ctx context.Context, pageSize int, pageToken string) (AccountPage, error)
	// GetAccountByEmail returns the account registered under the given email,
	// or ErrAccountNotFound.
	GetAccountByEmail(ctx context.Context, email string) (AccountRecord, error)
	// DeleteAccount removes the account, returning ErrAccountNotFound when no
	// such account exists.
	DeleteAccount(ctx context.Context, uid string) error
}

// UserStore reads and mutates user documents in the profile store.
type UserStore interface {
	// Get returns the document for the UID, or ErrDocumentNotFound.
	Get(ctx context.Context, uid string) (UserDocument, error)
	// Create writes a new document keyed by doc.UID.
	Create(ctx context.Context, doc UserDocument) error
	// Delete removes the document for the UID. Deleting an absent document is not
	// an error.
	Delete(ctx context.Context, uid string) error
}

// Service exposes the administrative account operations.
type Service interface {
	// ListUsers enumerates every directory account. Requires an authenticated caller.
	ListUsers(ctx context.Context) (*ListUsersResult, error)
	// SyncUsers creates missing user documents for directory accounts. Admin only.
	SyncUsers(ctx context.Context, callerUID string) (*SyncStats, error)
	// DeleteUser removes an account from the directory and/or the store. Admin only.
	DeleteUser(ctx context.Context, callerUID, uid string, fromAuth, fromFirestore bool) (*DeletionResult, error)
}
