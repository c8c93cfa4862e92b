package admin

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a UserStore backed by the users collection in Firestore.
func NewFirestoreStore(client *firestore.Client) UserStore {
	return &firestoreStore{client: client}
}

func (s *firestoreStore) Get(ctx context.Context, uid string) (UserDocument, error) {
	doc, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return UserDocument{}, fmt.Errorf("%s: %w", uid, ErrDocumentNotFound)
	}
	if err != nil {
		return UserDocument{}, err
	}

	var document UserDocument
	if err := doc.DataTo(&document); err != nil {
		return UserDocument{}, fmt.Errorf("unmarshal user document: %w", err)
	}
	document.UID = uid
	return document, nil
}

func (s *firestoreStore) Create(ctx context.Context, doc UserDocument) error {
	data := map[string]any{
		"uid":               doc.UID,
		"email":             doc.Email,
		"role":              doc.Role,
		"canMoveTools":      doc.CanMoveTools,
		"canControlObjects": doc.CanControlObjects,
		"createdAt":         doc.CreatedAt,
	}
	// Fall back to the server clock when the directory has no creation time.
	if doc.CreatedAt.IsZero() {
		data["createdAt"] = firestore.ServerTimestamp
	}

	_, err := s.client.Collection(usersCollection).Doc(doc.UID).Create(ctx, data)
	return err
}

func (s *firestoreStore) Delete(ctx context.Context, uid string) error {
	_, err := s.client.Collection(usersCollection).Doc(uid).Delete(ctx)
	return err
}
