package store

// Declare database key prefix for objects
const (
	PrefixMemo    = "memo:"
	PrefixAccount = "account:"

	PrefixStateMeta      = "state_meta:"
	StateMetaKeySequence = PrefixStateMeta + "seq"
	StateMetaKeyContract = PrefixStateMeta + "contract"
	PrefixDeltaHashBySeq = PrefixStateMeta + "delta:"
)
