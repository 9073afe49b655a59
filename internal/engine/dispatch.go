package engine

import (
	"time"

	"hermes-sync-api/internal/model"
)

// Dispatch applies one sync batch to a user record according to the
// wire sync type, stamps the sync metadata, and recomputes statistics.
//
// Unrecognized types are accepted as a no-op merge rather than
// rejected: the collector ships ahead of the server sometimes, and a
// batch of an unknown kind must not fail the extension. Even a no-op
// still updates lastSync so the collector's liveness tracking works.
//
// Collector-asserted batch statistics are ignored; statistics are
// always server-derived from the merged collections.
func Dispatch(u *model.UserRecord, syncType string, batch model.SyncBatch, limits model.CollectionLimits, now time.Time) {
	switch model.ParseSyncKind(syncType) {
	case model.SyncKindFull:
		mergeProfile(u, batch.Profile)
		u.Items = Merge(u.Items, batch.Items, limits.Items, now)
		u.Sales = Merge(u.Sales, batch.Sales, limits.Sales, now)
		u.Messages = Merge(u.Messages, batch.Messages, limits.Messages, now)
	case model.SyncKindProfile:
		mergeProfile(u, batch.Profile)
	case model.SyncKindItems:
		u.Items = Merge(u.Items, batch.Items, limits.Items, now)
	case model.SyncKindSales:
		u.Sales = Merge(u.Sales, batch.Sales, limits.Sales, now)
	case model.SyncKindUnknown:
		// no-op arm, stamped below
	}

	u.LastSyncAt = now
	u.LastSyncKind = syncType
	u.Statistics = Aggregate(u, now)
}

// mergeProfile shallow-merges incoming profile fields over the stored
// profile. Absent fields keep their previous values.
func mergeProfile(u *model.UserRecord, profile map[string]any) {
	if len(profile) == 0 {
		return
	}
	if u.Profile == nil {
		u.Profile = make(map[string]any, len(profile))
	}
	for k, v := range profile {
		u.Profile[k] = v
	}
}
