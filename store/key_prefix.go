package store

// Declare database key prefix for objects
const (
	PrefixBalance = "balance:"
	PrefixNonce   = "nonce:"

	KeyTotalSupply    = "meta:total_supply"
	KeyLastRewardSlot = "reward:last_slot"
)
