package admin

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Mrxforte/tooler/internal/apierror"
)

type fakeDirectory struct {
	listFn       func(context.Context, int, string) (AccountPage, error)
	getByEmailFn func(context.Context, string) (AccountRecord, error)
	deleteFn     func(context.Context, string) error
}

func (f *fakeDirectory) ListAccounts(ctx context.Context, pageSize int, pageToken string) (AccountPage, error) {
	if f.listFn != nil {
		return f.listFn(ctx, pageSize, pageToken)
	}
	return AccountPage{}, errors.New("listFn not provided")
}

func (f *fakeDirectory) GetAccountByEmail(ctx context.Context, email string) (AccountRecord, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return AccountRecord{}, errors.New("getByEmailFn not provided")
}

func (f *fakeDirectory) DeleteAccount(ctx context.Context, uid string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, uid)
	}
	return errors.New("deleteFn not provided")
}

// memoryStore is an in-memory UserStore that records writes.
type memoryStore struct {
	docs      map[string]UserDocument
	createErr func(doc UserDocument) error
	deleteErr error

	creates int
	deletes int
}

func newMemoryStore(docs ...UserDocument) *memoryStore {
	s := &memoryStore{docs: make(map[string]UserDocument)}
	for _, doc := range docs {
		s.docs[doc.UID] = doc
	}
	return s
}

func (s *memoryStore) Get(_ context.Context, uid string) (UserDocument, error) {
	doc, ok := s.docs[uid]
	if !ok {
		return UserDocument{}, fmt.Errorf("%s: %w", uid, ErrDocumentNotFound)
	}
	return doc, nil
}

func (s *memoryStore) Create(_ context.Context, doc UserDocument) error {
	if s.createErr != nil {
		if err := s.createErr(doc); err != nil {
			return err
		}
	}
	s.creates++
	s.docs[doc.UID] = doc
	return nil
}

func (s *memoryStore) Delete(_ context.Context, uid string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes++
	delete(s.docs, uid)
	return nil
}

func adminDoc(uid string) UserDocument {
	return UserDocument{UID: uid, Role: RoleAdmin}
}

// directoryOf serves the given accounts in fixed-size pages with opaque tokens.
func directoryOf(accounts []AccountRecord, pageSize int) *fakeDirectory {
	return &fakeDirectory{
		listFn: func(_ context.Context, _ int, token string) (AccountPage, error) {
			start := 0
			if token != "" {
				if _, err := fmt.Sscanf(token, "page-%d", &start); err != nil {
					return AccountPage{}, fmt.Errorf("bad token %q", token)
				}
			}
			end := start + pageSize
			next := ""
			if end < len(accounts) {
				next = fmt.Sprintf("page-%d", end)
			} else {
				end = len(accounts)
			}
			return AccountPage{Accounts: accounts[start:end], NextPageToken: next}, nil
		},
	}
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected tagged API error, got %v", err)
	}
	return apiErr.Code
}

func TestSyncUsers_RequiresAdmin(t *testing.T) {
	store := newMemoryStore(UserDocument{UID: "caller-1", Role: RoleUser})
	svc := NewService(&fakeDirectory{}, store)

	_, err := svc.SyncUsers(context.Background(), "caller-1")
	if code := apiCode(t, err); code != apierror.CodePermissionDenied {
		t.Fatalf("expected permission_denied, got %s", code)
	}
	if store.creates != 0 {
		t.Fatalf("expected zero writes, got %d", store.creates)
	}
}

func TestSyncUsers_RequiresCallerDocument(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(&fakeDirectory{}, store)

	_, err := svc.SyncUsers(context.Background(), "ghost")
	if code := apiCode(t, err); code != apierror.CodePermissionDenied {
		t.Fatalf("expected permission_denied, got %s", code)
	}
}

func TestSyncUsers_CreatesMissingDocuments(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	accounts := []AccountRecord{
		{UID: "u1", Email: "a@example.com", CreatedAt: &created},
		{UID: "u2", Email: "b@example.com"},
		{UID: "admin-1", Email: "admin@example.com"},
	}
	store := newMemoryStore(adminDoc("admin-1"))
	svc := NewService(directoryOf(accounts, 1000), store)

	stats, err := svc.SyncUsers(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("SyncUsers returned error: %v", err)
	}
	if stats.Created != 2 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", stats.Errors)
	}

	doc := store.docs["u1"]
	if doc.Role != RoleUser || doc.CanMoveTools || doc.CanControlObjects {
		t.Fatalf("unexpected defaults: %+v", doc)
	}
	if doc.Email != "a@example.com" {
		t.Fatalf("email not copied: %+v", doc)
	}
	if !doc.CreatedAt.Equal(created) {
		t.Fatalf("createdAt not copied from directory: %v", doc.CreatedAt)
	}
	if !store.docs["u2"].CreatedAt.IsZero() {
		t.Fatalf("expected zero createdAt when directory has none")
	}
}

func TestSyncUsers_SecondRunIsIdempotent(t *testing.T) {
	accounts := []AccountRecord{
		{UID: "u1", Email: "a@example.com"},
		{UID: "u2", Email: "b@example.com"},
		{UID: "admin-1", Email: "admin@example.com"},
	}
	store := newMemoryStore(adminDoc("admin-1"))
	svc := NewService(directoryOf(accounts, 1000), store)

	if _, err := svc.SyncUsers(context.Background(), "admin-1"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	stats, err := svc.SyncUsers(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Created != 0 || stats.Skipped != len(accounts) {
		t.Fatalf("expected created=0 skipped=%d, got %+v", len(accounts), stats)
	}
}

func TestSyncUsers_NeverAltersExistingRoles(t *testing.T) {
	accounts := []AccountRecord{{UID: "admin-1", Email: "admin@example.com"}}
	store := newMemoryStore(adminDoc("admin-1"))
	svc := NewService(directoryOf(accounts, 1000), store)

	if _, err := svc.SyncUsers(context.Background(), "admin-1"); err != nil {
		t.Fatalf("SyncUsers returned error: %v", err)
	}
	if store.docs["admin-1"].Role != RoleAdmin {
		t.Fatalf("existing admin role was altered")
	}
	if store.creates != 0 {
		t.Fatalf("existing document was rewritten")
	}
}

func TestSyncUsers_PerRecordFailureDoesNotAbortRun(t *testing.T) {
	var accounts []AccountRecord
	for i := 0; i < 2500; i++ {
		accounts = append(accounts, AccountRecord{
			UID:   fmt.Sprintf("u%d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		})
	}
	accounts = append(accounts, AccountRecord{UID: "admin-1", Email: "admin@example.com"})

	store := newMemoryStore(adminDoc("admin-1"))
	store.createErr = func(doc UserDocument) error {
		if doc.UID == "u500" {
			return errors.New("store unavailable")
		}
		return nil
	}
	svc := NewService(directoryOf(accounts, 1000), store)

	stats, err := svc.SyncUsers(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("SyncUsers returned error: %v", err)
	}
	if stats.Created != 2499 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats: created=%d skipped=%d", stats.Created, stats.Skipped)
	}
	if len(stats.Errors) != 1 {
		t.Fatalf("expected one error entry, got %v", stats.Errors)
	}
	want := "Error syncing user500@example.com: store unavailable"
	if stats.Errors[0] != want {
		t.Fatalf("unexpected error entry: %q", stats.Errors[0])
	}
}

func TestSyncUsers_EnumerationFailureIsFatal(t *testing.T) {
	calls := 0
	directory := &fakeDirectory{
		listFn: func(_ context.Context, _ int, token string) (AccountPage, error) {
			calls++
			if token == "" {
				return AccountPage{
					Accounts:      []AccountRecord{{UID: "u1", Email: "a@example.com"}},
					NextPageToken: "next",
				}, nil
			}
			return AccountPage{}, errors.New("directory unavailable")
		},
	}
	store := newMemoryStore(adminDoc("admin-1"))
	svc := NewService(directory, store)

	_, err := svc.SyncUsers(context.Background(), "admin-1")
	if code := apiCode(t, err); code != apierror.CodeInternal {
		t.Fatalf("expected internal, got %s", code)
	}
	if calls != 2 {
		t.Fatalf("expected enumeration to stop on failure, got %d calls", calls)
	}
}

func TestListUsers_AggregatesAllPagesInOrder(t *testing.T) {
	var accounts []AccountRecord
	for i := 0; i < 2500; i++ {
		accounts = append(accounts, AccountRecord{
			UID:   fmt.Sprintf("u%d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		})
	}
	svc := NewService(directoryOf(accounts, 1000), newMemoryStore())

	result, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if result.UserCount != 2500 || len(result.Users) != 2500 {
		t.Fatalf("unexpected count: %d", result.UserCount)
	}
	for i, user := range result.Users {
		if user.UID != fmt.Sprintf("u%d", i) {
			t.Fatalf("enumeration order broken at %d: %s", i, user.UID)
		}
	}
}

func TestListUsers_SubstitutesMissingEmail(t *testing.T) {
	accounts := []AccountRecord{{UID: "u1"}}
	svc := NewService(directoryOf(accounts, 1000), newMemoryStore())

	result, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if result.Users[0].Email != "No email" {
		t.Fatalf("expected email placeholder, got %q", result.Users[0].Email)
	}
}

func TestDeleteUser_RequiresAtLeastOneTarget(t *testing.T) {
	store := newMemoryStore(adminDoc("admin-1"))
	deleted := false
	directory := &fakeDirectory{deleteFn: func(context.Context, string) error {
		deleted = true
		return nil
	}}
	svc := NewService(directory, store)

	_, err := svc.DeleteUser(context.Background(), "admin-1", "u1", false, false)
	if code := apiCode(t, err); code != apierror.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument, got %s", code)
	}
	if deleted || store.deletes != 0 {
		t.Fatalf("expected no store access on rejected call")
	}
}

func TestDeleteUser_RequiresUID(t *testing.T) {
	svc := NewService(&fakeDirectory{}, newMemoryStore(adminDoc("admin-1")))

	_, err := svc.DeleteUser(context.Background(), "admin-1", "  ", true, true)
	if code := apiCode(t, err); code != apierror.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument, got %s", code)
	}
}

func TestDeleteUser_RequiresAdmin(t *testing.T) {
	store := newMemoryStore(UserDocument{UID: "caller-1", Role: RoleUser})
	svc := NewService(&fakeDirectory{}, store)

	_, err := svc.DeleteUser(context.Background(), "caller-1", "u1", true, true)
	if code := apiCode(t, err); code != apierror.CodePermissionDenied {
		t.Fatalf("expected permission_denied, got %s", code)
	}
	if store.deletes != 0 {
		t.Fatalf("expected zero deletes")
	}
}

func TestDeleteUser_PartialSuccess(t *testing.T) {
	store := newMemoryStore(adminDoc("admin-1"))
	store.deleteErr = errors.New("firestore unavailable")
	directory := &fakeDirectory{deleteFn: func(context.Context, string) error { return nil }}
	svc := NewService(directory, store)

	result, err := svc.DeleteUser(context.Background(), "admin-1", "u1", true, true)
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if !result.AuthDeleted || result.FirestoreDeleted {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error entry, got %v", result.Errors)
	}
}

func TestDeleteUser_BothTargetsFailing(t *testing.T) {
	store := newMemoryStore(adminDoc("admin-1"))
	store.deleteErr = errors.New("firestore unavailable")
	directory := &fakeDirectory{deleteFn: func(context.Context, string) error {
		return errors.New("auth unavailable")
	}}
	svc := NewService(directory, store)

	_, err := svc.DeleteUser(context.Background(), "admin-1", "u1", true, true)
	if code := apiCode(t, err); code != apierror.CodeInternal {
		t.Fatalf("expected internal, got %s", code)
	}
}

func TestDeleteUser_MissingAccountIsNotFound(t *testing.T) {
	store := newMemoryStore(adminDoc("admin-1"))
	directory := &fakeDirectory{deleteFn: func(_ context.Context, uid string) error {
		return fmt.Errorf("%s: %w", uid, ErrAccountNotFound)
	}}
	svc := NewService(directory, store)

	_, err := svc.DeleteUser(context.Background(), "admin-1", "ghost", true, false)
	if code := apiCode(t, err); code != apierror.CodeNotFound {
		t.Fatalf("expected not_found, got %s", code)
	}
}

func TestDeleteUser_BothSucceed(t *testing.T) {
	store := newMemoryStore(adminDoc("admin-1"), UserDocument{UID: "u1", Role: RoleUser})
	directory := &fakeDirectory{deleteFn: func(context.Context, string) error { return nil }}
	svc := NewService(directory, store)

	result, err := svc.DeleteUser(context.Background(), "admin-1", "u1", true, true)
	if err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}
	if !result.AuthDeleted || !result.FirestoreDeleted || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, ok := store.docs["u1"]; ok {
		t.Fatalf("store document was not removed")
	}
}
