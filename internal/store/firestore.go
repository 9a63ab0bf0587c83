package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Firestore lists collections of a Cloud Firestore database.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore initialises a Firebase app and its Firestore client. An empty
// credentialsFile falls back to application default credentials.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}
	return &Firestore{client: client}, nil
}

// ListDocuments reads every document of collection.
func (f *Firestore) ListDocuments(ctx context.Context, collection string) ([]map[string]any, error) {
	ref := f.client.Collection(collection)
	if ref == nil {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}
	iter := ref.Documents(ctx)
	defer iter.Stop()

	docs := []map[string]any{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc.Data())
	}
	return docs, nil
}

// Healthy checks that the database can be reached.
func (f *Firestore) Healthy(ctx context.Context) bool {
	if f == nil || f.client == nil {
		return false
	}
	iter := f.client.Collections(ctx)
	_, err := iter.Next()
	return err == nil || errors.Is(err, iterator.Done)
}

// Close releases the client.
func (f *Firestore) Close() error {
	if f == nil || f.client == nil {
		return nil
	}
	return f.client.Close()
}
