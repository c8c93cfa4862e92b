package admin

import (
	"context"
	"fmt"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
)

type firebaseDirectory struct {
	client *fbauth.Client
}

// NewFirebaseDirectory creates a Directory backed by Firebase Authentication.
func NewFirebaseDirectory(client *fbauth.Client) Directory {
	return &firebaseDirectory{client: client}
}

func (d *firebaseDirectory) ListAccounts(ctx context.Context, pageSize int, pageToken string) (AccountPage, error) {
	it := d.client.Users(ctx, pageToken)
	pager := iterator.NewPager(it, pageSize, pageToken)

	var records []*fbauth.ExportedUserRecord
	nextToken, err := pager.NextPage(&records)
	if err != nil {
		return AccountPage{}, fmt.Errorf("list auth users: %w", err)
	}

	page := AccountPage{
		Accounts:      make([]AccountRecord, 0, len(records)),
		NextPageToken: nextToken,
	}
	for _, record := range records {
		page.Accounts = append(page.Accounts, accountFromRecord(record.UserRecord))
	}
	return page, nil
}

func (d *firebaseDirectory) GetAccountByEmail(ctx context.Context, email string) (AccountRecord, error) {
	record, err := d.client.GetUserByEmail(ctx, email)
	if fbauth.IsUserNotFound(err) {
		return AccountRecord{}, fmt.Errorf("%s: %w", email, ErrAccountNotFound)
	}
	if err != nil {
		return AccountRecord{}, fmt.Errorf("get auth user by email: %w", err)
	}
	return accountFromRecord(record), nil
}

func (d *firebaseDirectory) DeleteAccount(ctx context.Context, uid string) error {
	err := d.client.DeleteUser(ctx, uid)
	if fbauth.IsUserNotFound(err) {
		return fmt.Errorf("%s: %w", uid, ErrAccountNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete auth user: %w", err)
	}
	return nil
}

func accountFromRecord(record *fbauth.UserRecord) AccountRecord {
	account := AccountRecord{
		UID:      record.UID,
		Email:    record.Email,
		Disabled: record.Disabled,
	}
	if meta := record.UserMetadata; meta != nil {
		account.CreatedAt = millisToTime(meta.CreationTimestamp)
		account.LastSignInAt = millisToTime(meta.LastLogInTimestamp)
	}
	return account
}

func millisToTime(millis int64) *time.Time {
	if millis == 0 {
		return nil
	}
	t := time.UnixMilli(millis).UTC()
	return &t
}
