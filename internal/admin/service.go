package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Mrxforte/tooler/internal/apierror"
)

// listPageSize bounds memory to one directory page per iteration.
const listPageSize = 1000

type service struct {
	directory Directory
	store     UserStore
}

// NewService creates a new admin service over the given directory and store.
func NewService(directory Directory, store UserStore) Service {
	return &service{directory: directory, store: store}
}

// requireAdmin is the authorization guard for privileged operations. It reads the
// caller's user document on every call so role changes take effect immediately.
func (s *service) requireAdmin(ctx context.Context, callerUID string) error {
	if callerUID == "" {
		return apierror.Unauthenticated("Request must be authenticated")
	}

	doc, err := s.store.Get(ctx, callerUID)
	if errors.Is(err, ErrDocumentNotFound) {
		return apierror.PermissionDenied("Only admins can perform this operation")
	}
	if err != nil {
		return apierror.Internal(fmt.Sprintf("Failed to verify admin role: %v", err))
	}
	if doc.Role != RoleAdmin {
		return apierror.PermissionDenied("Only admins can perform this operation")
	}
	return nil
}

func (s *service) ListUsers(ctx context.Context) (*ListUsersResult, error) {
	result := &ListUsersResult{Users: []AccountRecord{}}

	pageToken := ""
	for {
		page, err := s.directory.ListAccounts(ctx, listPageSize, pageToken)
		if err != nil {
			return nil, apierror.Internal(fmt.Sprintf("Failed to list users: %v", err))
		}

		for _, account := range page.Accounts {
			if account.Email == "" {
				account.Email = "No email"
			}
			result.Users = append(result.Users, account)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	result.UserCount = len(result.Users)
	return result, nil
}

func (s *service) SyncUsers(ctx context.Context, callerUID string) (*SyncStats, error) {
	if err := s.requireAdmin(ctx, callerUID); err != nil {
		return nil, err
	}

	stats := &SyncStats{Errors: []string{}}

	pageToken := ""
	for {
		page, err := s.directory.ListAccounts(ctx, listPageSize, pageToken)
		if err != nil {
			// Enumeration failure is fatal; stats collected so far are discarded.
			return nil, apierror.Internal(fmt.Sprintf("Failed to sync users: %v", err))
		}

		for _, account := range page.Accounts {
			if err := s.syncAccount(ctx, account, stats); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("Error syncing %s: %v", account.Email, err))
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return stats, nil
}

// syncAccount creates the user document for one account if it is missing. Existing
// documents are never touched so admin-assigned roles survive reconciliation.
func (s *service) syncAccount(ctx context.Context, account AccountRecord, stats *SyncStats) error {
	_, err := s.store.Get(ctx, account.UID)
	if err == nil {
		stats.Skipped++
		return nil
	}
	if !errors.Is(err, ErrDocumentNotFound) {
		return err
	}

	doc := UserDocument{
		UID:               account.UID,
		Email:             account.Email,
		Role:              RoleUser,
		CanMoveTools:      false,
		CanControlObjects: false,
	}
	if account.CreatedAt != nil {
		doc.CreatedAt = *account.CreatedAt
	}

	if err := s.store.Create(ctx, doc); err != nil {
		return err
	}
	stats.Created++
	return nil
}

func (s *service) DeleteUser(ctx context.Context, callerUID, uid string, fromAuth, fromFirestore bool) (*DeletionResult, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, apierror.InvalidArgument("User UID is required")
	}
	if !fromAuth && !fromFirestore {
		return nil, apierror.InvalidArgument("Must delete from at least Auth or Firestore")
	}

	if err := s.requireAdmin(ctx, callerUID); err != nil {
		return nil, err
	}

	result := &DeletionResult{Errors: []string{}}

	// The two deletions are independent; a failure of one never prevents the
	// other. Errors are stashed per branch and assembled after both finish.
	var authErr, storeErr error
	g, gctx := errgroup.WithContext(ctx)

	if fromAuth {
		g.Go(func() error {
			if err := s.directory.DeleteAccount(gctx, uid); err != nil {
				authErr = err
				return nil
			}
			result.AuthDeleted = true
			return nil
		})
	}
	if fromFirestore {
		g.Go(func() error {
			if err := s.store.Delete(gctx, uid); err != nil {
				storeErr = err
				return nil
			}
			result.FirestoreDeleted = true
			return nil
		})
	}
	_ = g.Wait()

	if authErr != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Auth deletion failed: %v", authErr))
	}
	if storeErr != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Firestore deletion failed: %v", storeErr))
	}

	if !result.AuthDeleted && !result.FirestoreDeleted {
		if errors.Is(authErr, ErrAccountNotFound) {
			return nil, apierror.NotFound(fmt.Sprintf("User %s not found in Firebase Auth", uid))
		}
		return nil, apierror.Internal(fmt.Sprintf("Failed to delete user: %s", strings.Join(result.Errors, ", ")))
	}

	return result, nil
}
