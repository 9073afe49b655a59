package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"hermes-sync-api/internal/model"
	"hermes-sync-api/internal/store"
	"hermes-sync-api/pkg/apierror"
)

type fakeAccountRepo struct {
	accounts map[string]*model.Account
}

func (f *fakeAccountRepo) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	acc, ok := f.accounts[email]
	if !ok {
		return nil, errors.New("account not found")
	}
	return acc, nil
}

func (f *fakeAccountRepo) ValidateCredentials(ctx context.Context, email, password string) (*model.Account, error) {
	return f.GetAccountByEmail(ctx, email)
}

type fakeSnapshotRepo struct {
	upserts map[string][]byte
	listed  []model.Snapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{upserts: make(map[string][]byte)}
}

func (f *fakeSnapshotRepo) UpsertSnapshot(ctx context.Context, userEmail string, data []byte) error {
	f.upserts[userEmail] = data
	return nil
}

func (f *fakeSnapshotRepo) GetSnapshot(ctx context.Context, userEmail string) ([]byte, *time.Time, error) {
	data, ok := f.upserts[userEmail]
	if !ok {
		return nil, nil, nil
	}
	now := time.Now()
	return data, &now, nil
}

func (f *fakeSnapshotRepo) BatchUpsertSnapshots(ctx context.Context, items []model.Snapshot) error {
	for _, item := range items {
		f.upserts[item.UserEmail] = item.Data
	}
	return nil
}

func (f *fakeSnapshotRepo) ListSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	return f.listed, nil
}

func (f *fakeSnapshotRepo) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"total_users": len(f.upserts)}, nil
}

func (f *fakeSnapshotRepo) DeleteInactiveUsers(ctx context.Context, threshold time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeSnapshotRepo) Close() error { return nil }

func newTestStore() *store.Store {
	return store.New(model.DefaultCollectionLimits(), model.DefaultViewLimits())
}

func TestApplySyncRequiresEmail(t *testing.T) {
	svc := NewSyncService(newTestStore(), nil, nil)

	_, err := svc.ApplySync(context.Background(), "", "full_sync", model.SyncBatch{})
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 400 {
		t.Fatalf("expected 400 validation error, got %v", err)
	}
}

func TestApplySyncRejectsUnknownAccount(t *testing.T) {
	accounts := &fakeAccountRepo{accounts: map[string]*model.Account{}}
	svc := NewSyncService(newTestStore(), accounts, nil)

	_, err := svc.ApplySync(context.Background(), "ghost@example.com", "full_sync", model.SyncBatch{})
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 404 {
		t.Fatalf("expected 404 for unknown account, got %v", err)
	}
}

func TestApplySyncRejectsInactiveAccount(t *testing.T) {
	accounts := &fakeAccountRepo{accounts: map[string]*model.Account{
		"seller@example.com": {Email: "seller@example.com", IsActive: false},
	}}
	svc := NewSyncService(newTestStore(), accounts, nil)

	_, err := svc.ApplySync(context.Background(), "seller@example.com", "full_sync", model.SyncBatch{})
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 404 {
		t.Fatalf("expected 404 for inactive account, got %v", err)
	}
}

func TestApplySyncLowercasesEmailAndPersists(t *testing.T) {
	snapshots := newFakeSnapshotRepo()
	svc := NewSyncService(newTestStore(), nil, snapshots)

	result, err := svc.ApplySync(context.Background(), "Seller@Example.COM", "items_sync", model.SyncBatch{
		Items: []model.Record{{"hash": "i1", "price": "10,00 €"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ItemsCount != 1 {
		t.Fatalf("expected 1 item, got %d", result.ItemsCount)
	}

	data, ok := snapshots.upserts["seller@example.com"]
	if !ok {
		t.Fatalf("expected snapshot persisted under lowercased email, got %v", snapshots.upserts)
	}
	var rec model.UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(rec.Items) != 1 {
		t.Fatalf("expected serialized record with 1 item, got %d", len(rec.Items))
	}
}

func TestGetUserDataUnknownUser(t *testing.T) {
	svc := NewSyncService(newTestStore(), nil, nil)

	_, err := svc.GetUserData(context.Background(), "ghost@example.com")
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 404 {
		t.Fatalf("expected 404 for unsynced user, got %v", err)
	}
}

func TestGetUserDataReturnsBoundedView(t *testing.T) {
	st := store.New(model.DefaultCollectionLimits(), model.ViewLimits{Items: 2, Sales: 50, Messages: 30})
	svc := NewSyncService(st, nil, nil)

	var items []model.Record
	for _, h := range []string{"i1", "i2", "i3"} {
		items = append(items, model.Record{"hash": h})
	}
	if _, err := svc.ApplySync(context.Background(), "seller@example.com", "items_sync", model.SyncBatch{Items: items}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	data, err := svc.GetUserData(context.Background(), "seller@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var view struct {
		Email           string         `json:"email"`
		Items           []model.Record `json:"items"`
		IsActive        bool           `json:"isActive"`
		VintedConnected bool           `json:"vintedConnected"`
	}
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("view is not valid JSON: %v", err)
	}
	if view.Email != "seller@example.com" {
		t.Fatalf("expected email in view, got %q", view.Email)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected view bounded to 2 items, got %d", len(view.Items))
	}
	if !view.IsActive || !view.VintedConnected {
		t.Fatalf("expected active connected flags in view")
	}
}

func TestRestoreSnapshots(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	rec := model.NewUserRecord("seller@example.com", now)
	rec.Items = []model.Record{{"hash": "i1"}}
	data, _ := json.Marshal(rec)

	snapshots := newFakeSnapshotRepo()
	snapshots.listed = []model.Snapshot{
		{UserEmail: "seller@example.com", Data: data},
		{UserEmail: "corrupt@example.com", Data: []byte("{not json")},
	}

	st := newTestStore()
	svc := NewSyncService(st, nil, snapshots)

	restored, err := svc.RestoreSnapshots(context.Background())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored != 1 {
		t.Fatalf("expected 1 restored snapshot, got %d", restored)
	}
	got, ok := st.Get("seller@example.com")
	if !ok || len(got.Items) != 1 {
		t.Fatalf("expected restored record in store")
	}
}
