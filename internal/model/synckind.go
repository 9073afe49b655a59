package model

// SyncKind classifies a sync batch: which sub-collections it intends to
// update. Kinds the server does not recognize map to SyncKindUnknown,
// which is a contractual no-op (nothing merged, timestamp still
// stamped) so that newer collector builds never get their requests
// rejected by an older server.
type SyncKind int

const (
	SyncKindUnknown SyncKind = iota
	SyncKindFull
	SyncKindProfile
	SyncKindItems
	SyncKindSales
)

// Wire names used by the collector extension.
const (
	syncTypeFull    = "full_sync"
	syncTypeProfile = "profile_sync"
	syncTypeItems   = "items_sync"
	syncTypeSales   = "sales_sync"
)

// ParseSyncKind maps a wire type string to a SyncKind.
func ParseSyncKind(s string) SyncKind {
	switch s {
	case syncTypeFull:
		return SyncKindFull
	case syncTypeProfile:
		return SyncKindProfile
	case syncTypeItems:
		return SyncKindItems
	case syncTypeSales:
		return SyncKindSales
	default:
		return SyncKindUnknown
	}
}

func (k SyncKind) String() string {
	switch k {
	case SyncKindFull:
		return syncTypeFull
	case SyncKindProfile:
		return syncTypeProfile
	case SyncKindItems:
		return syncTypeItems
	case SyncKindSales:
		return syncTypeSales
	default:
		return "unknown"
	}
}
